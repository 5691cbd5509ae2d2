package trader

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Side is the order direction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderTypeMarket is the only order type this service places.
const OrderTypeMarket = "MARKET"

// ParseSide accepts buy/sell in any case.
func ParseSide(s string) (Side, bool) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case SideBuy:
		return SideBuy, true
	case SideSell:
		return SideSell, true
	}
	return "", false
}

// OrderRequest is a market order ready for submission.
type OrderRequest struct {
	Symbol        string
	Side          Side
	Type          string
	Quantity      decimal.Decimal
	ClientOrderID string
}

// OrderResult is the exchange's order record, passed through as-is.
type OrderResult map[string]interface{}

// ExchangeError is an order rejected by the exchange itself.
type ExchangeError struct {
	Code    int64
	Message string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("Binance API error: %s (code: %d)", e.Message, e.Code)
}

// Trader submits orders. Errors are either *ExchangeError or anything else.
type Trader interface {
	PlaceMarketOrder(ctx context.Context, req OrderRequest) (OrderResult, error)
}
