package wsapi

import "net/http"

// NewMux builds the streaming transport's handler: /stream/book and
// /stream/trades, served on their own port per spec.md §6 (the
// intake/query HTTP ports and the streaming port are conceptually
// distinct).
func NewMux(h *Handlers) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stream/book", h.BookStream)
	mux.HandleFunc("/stream/trades", h.TradeStream)
	return mux
}
