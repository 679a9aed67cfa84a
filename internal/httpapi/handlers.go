// Package httpapi is the intake and query/settlement HTTP surface (spec.md
// §6 ports A and B): order admission/modification/cancellation, order and
// trade lookups, and the point-in-time order book snapshot.
//
// Grounded on DimaJoyti-ai-agentic-crypto-browser's internal/auth handlers
// style (one method per route on a struct holding its services, bind-json-
// then-call-service-then-respond), adapted from gorilla/mux's Response
// envelope to gin.Context and to this spec's {kind,message} error shape.
package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lumenex/matchbook/internal/domain"
	"github.com/lumenex/matchbook/internal/feed"
	"github.com/lumenex/matchbook/internal/lane"
	"github.com/lumenex/matchbook/internal/storage"
)

// Handlers holds the services the HTTP routes call into.
type Handlers struct {
	lanes *lane.Controller
}

// NewHandlers constructs the handler set.
func NewHandlers(lanes *lane.Controller) *Handlers {
	return &Handlers{lanes: lanes}
}

// PlaceOrder handles POST /orders/.
func (h *Handlers) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Message: err.Error()})
		return
	}
	side, ok := parseSide(req.Side)
	if !ok {
		c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Message: "side must be buy or sell"})
		return
	}

	order, _, err := h.lanes.Place(c.Request.Context(), lane.PlaceRequest{
		Side:       side,
		OrderType:  domain.LimitOrder,
		Quantity:   req.Quantity,
		LimitPrice: req.Price,
		OwnerID:    req.OwnerID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderDTO(order))
}

// ListOrders handles GET /orders/.
func (h *Handlers) ListOrders(c *gin.Context) {
	f := storage.OrderFilter{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 50),
	}
	if s := c.Query("status"); s != "" {
		st, ok := parseStatus(s)
		if !ok {
			c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Message: "unknown status"})
			return
		}
		f.Status = &st
	}
	if s := c.Query("side"); s != "" {
		side, ok := parseSide(s)
		if !ok {
			c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Message: "side must be buy or sell"})
			return
		}
		f.Side = &side
	}
	if o := c.Query("owner_id"); o != "" {
		f.OwnerID = &o
	}

	orders, err := h.lanes.ListOrders(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	dtos := make([]orderDTO, len(orders))
	for i, o := range orders {
		dtos[i] = toOrderDTO(o)
	}
	c.JSON(http.StatusOK, dtos)
}

// GetOrder handles GET /orders/{id}/.
func (h *Handlers) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Message: "invalid order id"})
		return
	}
	order, err := h.lanes.Query(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderDTO(order))
}

// ModifyOrder handles PUT /orders/{id}/.
func (h *Handlers) ModifyOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Message: "invalid order id"})
		return
	}
	var req modifyOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Message: err.Error()})
		return
	}
	order, _, err := h.lanes.Modify(c.Request.Context(), id, req.Price)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderDTO(order))
}

// CancelOrder handles DELETE /orders/{id}/.
func (h *Handlers) CancelOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Message: "invalid order id"})
		return
	}
	order, err := h.lanes.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderDTO(order))
}

// ListTrades handles GET /trades/.
func (h *Handlers) ListTrades(c *gin.Context) {
	f := storage.TradeFilter{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 50),
	}
	trades, err := h.lanes.ListTrades(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	dtos := make([]tradeDTO, len(trades))
	for i, t := range trades {
		dtos[i] = toTradeDTO(t)
	}
	c.JSON(http.StatusOK, dtos)
}

// GetTrade handles GET /trades/{id}/.
func (h *Handlers) GetTrade(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Message: "invalid trade id"})
		return
	}
	trade, err := h.lanes.GetTrade(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTradeDTO(trade))
}

// SettleTrade handles POST /trades/{id}/settle/.
func (h *Handlers) SettleTrade(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Message: "invalid trade id"})
		return
	}
	trade, err := h.lanes.Settle(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTradeDTO(trade))
}

// GetOrderBook handles GET /orderbook/?depth=D.
func (h *Handlers) GetOrderBook(c *gin.Context) {
	depth := queryInt(c, "depth", feed.DefaultDepth)
	snap := h.lanes.Primary().Snapshot(depth)
	c.JSON(http.StatusOK, orderBookDTO{
		Bids: levelDTOs(snap.Bids),
		Asks: levelDTOs(snap.Asks),
	})
}

func levelDTOs(views []feed.LevelView) []levelDTO {
	out := make([]levelDTO, len(views))
	for i, v := range views {
		out[i] = levelDTO{Price: v.Price, Quantity: v.Quantity}
	}
	return out
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func parseStatus(s string) (domain.Status, bool) {
	switch s {
	case "pending":
		return domain.Pending, true
	case "active":
		return domain.Active, true
	case "partially_filled":
		return domain.PartiallyFilled, true
	case "filled":
		return domain.Filled, true
	case "cancelled":
		return domain.Cancelled, true
	case "rejected":
		return domain.Rejected, true
	default:
		return domain.Status(0), false
	}
}
