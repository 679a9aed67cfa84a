// Package wsapi is the streaming transport (spec.md §6 port C): two
// WebSocket subscriptions, book and trades, each periodically pushing JSON
// snapshots produced by internal/feed.Publisher, with ping/pong liveness.
//
// Grounded on VictorVVedtion-perp-dex's api/websocket.Client readPump/
// writePump split, narrowed from its generic subscribe/unsubscribe/auth
// protocol to one fixed feed per connection (the channel is selected by
// the route, not a client message) since spec.md names exactly two
// subscriptions with no per-connection filtering.
package wsapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lumenex/matchbook/internal/feed"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handlers serves the streaming endpoints for one instrument's publisher.
type Handlers struct {
	pub *feed.Publisher
	log zerolog.Logger
}

// NewHandlers constructs the WS handler set over pub.
func NewHandlers(pub *feed.Publisher, log zerolog.Logger) *Handlers {
	return &Handlers{pub: pub, log: log.With().Str("component", "wsapi").Logger()}
}

// BookStream upgrades the connection and pushes feed.BookSnapshot messages
// as they are published.
func (h *Handlers) BookStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("book stream upgrade failed")
		return
	}
	defer conn.Close()
	ch, unsubscribe := h.pub.SubscribeBook()
	defer unsubscribe()

	readerDone := startReader(conn)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-readerDone:
			return
		case <-ticker.C:
			if !ping(conn) {
				return
			}
		case snap, ok := <-ch:
			if !ok || !writeJSON(conn, h.log, snap) {
				return
			}
		}
	}
}

// TradeStream upgrades the connection and pushes feed.TradeSnapshot
// messages as they are published.
func (h *Handlers) TradeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("trade stream upgrade failed")
		return
	}
	defer conn.Close()
	ch, unsubscribe := h.pub.SubscribeTrades()
	defer unsubscribe()

	readerDone := startReader(conn)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-readerDone:
			return
		case <-ticker.C:
			if !ping(conn) {
				return
			}
		case snap, ok := <-ch:
			if !ok || !writeJSON(conn, h.log, snap) {
				return
			}
		}
	}
}

// startReader keeps the pong deadline fresh and detects the peer going
// away; its only job is to close the returned channel when the connection
// dies, since neither stream expects inbound client messages.
func startReader(conn *websocket.Conn) <-chan struct{} {
	done := make(chan struct{})
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return done
}

func ping(conn *websocket.Conn) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.PingMessage, nil) == nil
}

func writeJSON(conn *websocket.Conn, log zerolog.Logger, v any) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(v); err != nil {
		log.Warn().Err(err).Msg("stream write failed")
		return false
	}
	return true
}
