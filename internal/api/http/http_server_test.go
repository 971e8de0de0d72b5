package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/aryan2574/quantis-matching-engine/internal/adapter/in_memory"
	"github.com/aryan2574/quantis-matching-engine/internal/core"
	"github.com/aryan2574/quantis-matching-engine/internal/service"
)

var userSeq atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter() (*gin.Engine, *in_memory.MemoryRepo) {
	repo := in_memory.NewMemoryRepo()
	svc := service.NewOrderService(core.NewMatchingEngine(), repo, in_memory.NewCache(), in_memory.NewRecorder(), nil)
	return NewServer(svc).Router(), repo
}

// each request gets its own user so the per-user rate limit never trips
func post(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", fmt.Sprintf("user-%d", userSeq.Add(1)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func submitBody(orderID, side, price, qty string) map[string]any {
	return map[string]any{
		"order_id": orderID,
		"user_id":  "u1",
		"symbol":   "BTC-USD",
		"side":     side,
		"type":     "LIMIT",
		"price":    price,
		"quantity": qty,
	}
}

func TestSubmitOrderOK(t *testing.T) {
	r, _ := newTestRouter()

	w := post(t, r, "/orders", submitBody("o1", "BUY", "100", "5"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OrderID string `json:"order_id"`
		Status  string `json:"status"`
		MarketData struct {
			HasBid bool `json:"has_bid"`
		} `json:"market_data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "o1", resp.OrderID)
	require.Equal(t, "OPEN", resp.Status)
	require.True(t, resp.MarketData.HasBid)
}

func TestSubmitOrderMatches(t *testing.T) {
	r, _ := newTestRouter()

	require.Equal(t, http.StatusOK, post(t, r, "/orders", submitBody("m1", "SELL", "100", "5")).Code)
	w := post(t, r, "/orders", submitBody("t1", "BUY", "100", "5"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string `json:"status"`
		Trades []struct {
			MakerOrderID string `json:"maker_order_id"`
		} `json:"trades"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "FILLED", resp.Status)
	require.Len(t, resp.Trades, 1)
	require.Equal(t, "m1", resp.Trades[0].MakerOrderID)
}

func TestSubmitOrderValidation(t *testing.T) {
	r, _ := newTestRouter()

	bad := submitBody("o1", "BUY", "100", "0")
	require.Equal(t, http.StatusBadRequest, post(t, r, "/orders", bad).Code)

	bad = submitBody("o2", "SIDEWAYS", "100", "5")
	require.Equal(t, http.StatusBadRequest, post(t, r, "/orders", bad).Code)

	bad = submitBody("o3", "BUY", "0", "5")
	require.Equal(t, http.StatusBadRequest, post(t, r, "/orders", bad).Code)
}

func TestSubmitOrderDuplicateID(t *testing.T) {
	r, _ := newTestRouter()

	require.Equal(t, http.StatusOK, post(t, r, "/orders", submitBody("dup", "BUY", "100", "5")).Code)
	require.Equal(t, http.StatusConflict, post(t, r, "/orders", submitBody("dup", "BUY", "100", "5")).Code)
}

func TestSubmitOrderRequiresUserHeader(t *testing.T) {
	r, _ := newTestRouter()

	buf, err := json.Marshal(submitBody("o1", "BUY", "100", "5"))
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimitSameUser(t *testing.T) {
	r, _ := newTestRouter()

	buf, err := json.Marshal(submitBody("", "BUY", "100", "5"))
	require.NoError(t, err)
	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(buf))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "hot-user")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	require.Equal(t, http.StatusOK, codes[0])
	require.Equal(t, http.StatusTooManyRequests, codes[1])
}

func TestFOKKilledMessage(t *testing.T) {
	r, _ := newTestRouter()

	body := submitBody("fok1", "BUY", "100", "5")
	body["time_in_force"] = "FOK"
	w := post(t, r, "/orders", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "CANCELLED", resp.Status)
	require.Contains(t, resp.Message, "killed")
}

func TestCancelOrder(t *testing.T) {
	r, _ := newTestRouter()

	require.Equal(t, http.StatusOK, post(t, r, "/orders", submitBody("o1", "BUY", "100", "5")).Code)

	w := post(t, r, "/orders/cancel", map[string]any{"order_id": "o1", "symbol": "BTC-USD"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Cancelled bool `json:"cancelled"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Cancelled)

	// already gone
	w = post(t, r, "/orders/cancel", map[string]any{"order_id": "o1", "symbol": "BTC-USD"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Cancelled)
}

func TestReplaceOrder(t *testing.T) {
	r, _ := newTestRouter()

	require.Equal(t, http.StatusOK, post(t, r, "/orders", submitBody("o1", "BUY", "100", "5")).Code)

	w := post(t, r, "/orders/replace", map[string]any{
		"order_id": "o1", "symbol": "BTC-USD", "new_price": "99", "new_qty": "3",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		MarketData struct {
			BestBidPrice string `json:"best_bid_price"`
		} `json:"market_data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "99", resp.MarketData.BestBidPrice)
}

func TestReplaceUnknownOrderIs404(t *testing.T) {
	r, _ := newTestRouter()

	w := post(t, r, "/orders/replace", map[string]any{
		"order_id": "ghost", "symbol": "BTC-USD", "new_price": "99", "new_qty": "3",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetOrderAndTrades(t *testing.T) {
	r, _ := newTestRouter()

	require.Equal(t, http.StatusOK, post(t, r, "/orders", submitBody("m1", "SELL", "100", "5")).Code)
	require.Equal(t, http.StatusOK, post(t, r, "/orders", submitBody("t1", "BUY", "100", "2")).Code)

	w := get(r, "/orders/m1")
	require.Equal(t, http.StatusOK, w.Code)
	var orderResp struct {
		Order struct {
			Status    string `json:"status"`
			Remaining string `json:"remaining"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orderResp))
	require.Equal(t, "PARTIALLY_FILLED", orderResp.Order.Status)
	require.Equal(t, "3", orderResp.Order.Remaining)

	w = get(r, "/orders/t1/trades")
	require.Equal(t, http.StatusOK, w.Code)
	var tradesResp struct {
		Trades []struct {
			Price string `json:"price"`
		} `json:"trades"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tradesResp))
	require.Len(t, tradesResp.Trades, 1)
	require.Equal(t, "100", tradesResp.Trades[0].Price)

	require.Equal(t, http.StatusNotFound, get(r, "/orders/ghost").Code)
}

func TestGetOrderbook(t *testing.T) {
	r, _ := newTestRouter()

	require.Equal(t, http.StatusOK, post(t, r, "/orders", submitBody("b1", "BUY", "99", "5")).Code)
	require.Equal(t, http.StatusOK, post(t, r, "/orders", submitBody("a1", "SELL", "101", "3")).Code)

	w := get(r, "/orderbook?symbol=BTC-USD")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Bids []struct {
			Price string `json:"price"`
		} `json:"bids"`
		Asks []struct {
			Price string `json:"price"`
		} `json:"asks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Bids, 1)
	require.Len(t, resp.Asks, 1)
	require.Equal(t, "99", resp.Bids[0].Price)
	require.Equal(t, "101", resp.Asks[0].Price)

	require.Equal(t, http.StatusBadRequest, get(r, "/orderbook").Code)
	require.Equal(t, http.StatusBadRequest, get(r, "/orderbook?symbol=BTC-USD&levels=abc").Code)
}

func TestGetMarketData(t *testing.T) {
	r, _ := newTestRouter()

	require.Equal(t, http.StatusOK, post(t, r, "/orders", submitBody("b1", "BUY", "99", "5")).Code)

	w := get(r, "/marketdata?symbol=BTC-USD")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		HasBid       bool   `json:"has_bid"`
		BestBidPrice string `json:"best_bid_price"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.HasBid)
	require.Equal(t, "99", resp.BestBidPrice)

	require.Equal(t, http.StatusBadRequest, get(r, "/marketdata").Code)
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter()
	require.Equal(t, http.StatusOK, get(r, "/health").Code)
}
