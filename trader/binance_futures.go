package trader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/rs/zerolog/log"
)

// NewFuturesClient builds a USDⓈ-M futures client. futures.UseTestnet is
// read by the library at construction time, so it is set first.
func NewFuturesClient(apiKey, apiSecret string, testnet bool) *futures.Client {
	futures.UseTestnet = testnet
	return futures.NewClient(apiKey, apiSecret)
}

// FuturesTrader places orders on Binance USDⓈ-M futures (one-way mode).
type FuturesTrader struct {
	client *futures.Client
}

// NewFuturesTrader submits orders through client.
func NewFuturesTrader(client *futures.Client) *FuturesTrader {
	return &FuturesTrader{client: client}
}

// PlaceMarketOrder submits one market order. There is no retry.
func (t *FuturesTrader) PlaceMarketOrder(ctx context.Context, req OrderRequest) (OrderResult, error) {
	if !req.Quantity.IsPositive() {
		return nil, fmt.Errorf("refusing to submit non-positive quantity %s", req.Quantity)
	}
	orderType := req.Type
	if orderType == "" {
		orderType = OrderTypeMarket
	}

	svc := t.client.NewCreateOrderService().
		Symbol(req.Symbol).
		Side(futures.SideType(req.Side)).
		Type(futures.OrderType(orderType)).
		Quantity(req.Quantity.String())
	if req.ClientOrderID != "" {
		svc = svc.NewClientOrderID(req.ClientOrderID)
	}

	log.Ctx(ctx).Debug().
		Str("symbol", req.Symbol).
		Str("side", string(req.Side)).
		Str("quantity", req.Quantity.String()).
		Str("client_order_id", req.ClientOrderID).
		Msg("submit order")

	resp, err := svc.Do(ctx)
	if err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) {
			return nil, &ExchangeError{Code: apiErr.Code, Message: apiErr.Message}
		}
		return nil, fmt.Errorf("create order failed: %w", err)
	}
	return toOrderResult(resp)
}

func toOrderResult(resp *futures.CreateOrderResponse) (OrderResult, error) {
	b, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("could not encode order response: %w", err)
	}
	var result OrderResult
	if err := json.Unmarshal(b, &result); err != nil {
		return nil, fmt.Errorf("could not decode order response: %w", err)
	}
	return result, nil
}
