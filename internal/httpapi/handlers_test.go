package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lumenex/matchbook/internal/lane"
	"github.com/lumenex/matchbook/internal/metrics"
	"github.com/lumenex/matchbook/internal/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared&_busy_timeout=5000"
	store, err := storage.Open(storage.SQLite, dsn, zerolog.Nop())
	require.NoError(t, err)

	m := metrics.New(prometheus.NewRegistry())
	lanes, err := lane.New([]string{"EQUITY"}, 5, store, m, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, lanes.Start(context.Background()))
	t.Cleanup(func() { _ = lanes.Stop() })

	srv := httptest.NewServer(NewRouter(lanes))
	t.Cleanup(srv.Close)
	return srv
}

func TestPlaceOrder_CreatedAndReturnsOrder(t *testing.T) {
	srv := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"side":     "buy",
		"quantity": 10,
		"price":    "100.00",
	})
	resp, err := http.Post(srv.URL+"/orders/", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out orderDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "buy", out.Side)
	require.Equal(t, uint64(10), out.TotalQuantity)
}

func TestPlaceOrder_RejectsBadSide(t *testing.T) {
	srv := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"side":     "sideways",
		"quantity": 10,
		"price":    "100.00",
	})
	resp, err := http.Post(srv.URL+"/orders/", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetOrder_UnknownIDReturns404(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/orders/00000000-0000-0000-0000-000000000000/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCancelOrder_ThenCancelAgainIsStateConflict(t *testing.T) {
	srv := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"side":     "sell",
		"quantity": 5,
		"price":    "50.00",
	})
	resp, err := http.Post(srv.URL+"/orders/", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	var placed orderDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&placed))
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/orders/"+placed.ID.String()+"/", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/orders/"+placed.ID.String()+"/", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errBody errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
	require.Equal(t, "state_conflict", errBody.Kind)
}

func TestGetOrderBook_ReflectsRestingLiquidity(t *testing.T) {
	srv := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"side":     "buy",
		"quantity": 7,
		"price":    "42.00",
	})
	resp, err := http.Post(srv.URL+"/orders/", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/orderbook/?depth=5")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ob orderBookDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ob))
	require.Len(t, ob.Bids, 1)
	require.Equal(t, uint64(7), ob.Bids[0].Quantity)
	require.Empty(t, ob.Asks)
}
