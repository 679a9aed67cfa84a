package book

import "github.com/lumenex/matchbook/internal/domain"

// Book is the full two-sided price-level + resting-order index for one
// instrument. Ownership: per spec.md, the book is owned exclusively by its
// lane (internal/lane.Lane); nothing outside that goroutine may mutate it.
type Book struct {
	Ticker string
	Bids   *Side
	Asks   *Side
}

// New constructs an empty book for ticker.
func New(ticker string) *Book {
	return &Book{
		Ticker: ticker,
		Bids:   newSide(domain.Buy),
		Asks:   newSide(domain.Sell),
	}
}

// SideFor returns the book side an order of the given side rests on.
func (b *Book) SideFor(side domain.Side) *Side {
	if side == domain.Buy {
		return b.Bids
	}
	return b.Asks
}

// OpposingSideFor returns the book side an order of the given side would
// cross against.
func (b *Book) OpposingSideFor(side domain.Side) *Side {
	if side == domain.Buy {
		return b.Asks
	}
	return b.Bids
}
