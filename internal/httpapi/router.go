package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/lumenex/matchbook/internal/lane"
)

// NewRouter builds the port A/B HTTP handler: a gin engine wrapped in
// rs/cors, grounded on DimaJoyti-ai-agentic-crypto-browser's api.APIServer.
// Start wrapping its router the same way (cors.Handler(router)) rather than
// gin's own CORS middleware, since rs/cors is what the pack's HTTP servers
// standardize on.
func NewRouter(lanes *lane.Controller) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	h := NewHandlers(lanes)

	r.POST("/orders/", h.PlaceOrder)
	r.GET("/orders/", h.ListOrders)
	r.GET("/orders/:id/", h.GetOrder)
	r.PUT("/orders/:id/", h.ModifyOrder)
	r.DELETE("/orders/:id/", h.CancelOrder)

	r.GET("/trades/", h.ListTrades)
	r.GET("/trades/:id/", h.GetTrade)
	r.POST("/trades/:id/settle/", h.SettleTrade)

	r.GET("/orderbook/", h.GetOrderBook)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}
