package trader

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerRoundTripper struct {
	handler http.Handler
}

func (rt handlerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	recorder := httptest.NewRecorder()
	rt.handler.ServeHTTP(recorder, req)
	return recorder.Result(), nil
}

type failingRoundTripper struct{}

func (failingRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func newMockFuturesClient(t *testing.T, transport http.RoundTripper) *futures.Client {
	t.Helper()
	client := futures.NewClient("test-key", "test-secret")
	client.BaseURL = "http://mock.binance.local"
	client.HTTPClient = &http.Client{Timeout: 5 * time.Second, Transport: transport}
	return client
}

func TestFuturesTrader_PlaceMarketOrder(t *testing.T) {
	var form map[string]string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fapi/v1/order" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		require.NoError(t, r.ParseForm())
		form = map[string]string{
			"symbol":           r.Form.Get("symbol"),
			"side":             r.Form.Get("side"),
			"type":             r.Form.Get("type"),
			"quantity":         r.Form.Get("quantity"),
			"newClientOrderId": r.Form.Get("newClientOrderId"),
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"orderId":       int64(4051234567),
			"symbol":        "BTCUSDT",
			"status":        "NEW",
			"clientOrderId": "ab-1",
			"origQty":       "0.1",
			"executedQty":   "0",
			"type":          "MARKET",
			"side":          "BUY",
			"positionSide":  "BOTH",
			"updateTime":    int64(1700000000000),
		})
	})
	tr := NewFuturesTrader(newMockFuturesClient(t, handlerRoundTripper{handler: handler}))

	result, err := tr.PlaceMarketOrder(context.Background(), OrderRequest{
		Symbol:        "BTCUSDT",
		Side:          SideBuy,
		Quantity:      decimal.RequireFromString("0.1"),
		ClientOrderID: "ab-1",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"symbol":           "BTCUSDT",
		"side":             "BUY",
		"type":             "MARKET",
		"quantity":         "0.1",
		"newClientOrderId": "ab-1",
	}, form)
	assert.Equal(t, float64(4051234567), result["orderId"])
	assert.Equal(t, "BTCUSDT", result["symbol"])
	assert.Equal(t, "NEW", result["status"])
}

func TestFuturesTrader_ExchangeRejection(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"code": -2019, "msg": "Margin is insufficient."})
	})
	tr := NewFuturesTrader(newMockFuturesClient(t, handlerRoundTripper{handler: handler}))

	_, err := tr.PlaceMarketOrder(context.Background(), OrderRequest{
		Symbol:   "BTCUSDT",
		Side:     SideSell,
		Quantity: decimal.RequireFromString("0.002"),
	})
	var exErr *ExchangeError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, int64(-2019), exErr.Code)
	assert.Equal(t, "Margin is insufficient.", exErr.Message)
	assert.Equal(t, "Binance API error: Margin is insufficient. (code: -2019)", err.Error())
}

func TestFuturesTrader_TransportError(t *testing.T) {
	tr := NewFuturesTrader(newMockFuturesClient(t, failingRoundTripper{}))

	_, err := tr.PlaceMarketOrder(context.Background(), OrderRequest{
		Symbol:   "BTCUSDT",
		Side:     SideBuy,
		Quantity: decimal.RequireFromString("0.1"),
	})
	require.Error(t, err)
	var exErr *ExchangeError
	assert.False(t, errors.As(err, &exErr))
}

func TestFuturesTrader_RefusesZeroQuantity(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	tr := NewFuturesTrader(newMockFuturesClient(t, handlerRoundTripper{handler: handler}))

	_, err := tr.PlaceMarketOrder(context.Background(), OrderRequest{Symbol: "BTCUSDT", Side: SideBuy})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestNewFuturesClient_Testnet(t *testing.T) {
	defer func() { futures.UseTestnet = false }()

	live := NewFuturesClient("k", "s", false)
	test := NewFuturesClient("k", "s", true)
	assert.NotEqual(t, live.BaseURL, test.BaseURL)
}
