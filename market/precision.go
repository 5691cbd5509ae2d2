package market

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"alertbridge/metrics"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/rs/zerolog/log"
)

const (
	filterTypePrice   = "PRICE_FILTER"
	filterTypeLotSize = "LOT_SIZE"
)

// Precision is the quantity/price granularity of a symbol.
type Precision struct {
	StepSize float64 `json:"step_size"`
	TickSize float64 `json:"tick_size"`
}

// DefaultPrecision is used whenever the exchange metadata cannot be read.
var DefaultPrecision = Precision{StepSize: 0.001, TickSize: 0.01}

var (
	ErrSymbolNotFound = errors.New("symbol not found in exchange info")
	ErrFilterNotFound = errors.New("filter not found")
)

// ExchangeInfoSource returns the unscoped futures instrument metadata.
type ExchangeInfoSource interface {
	ExchangeInfo(ctx context.Context) (*futures.ExchangeInfo, error)
}

// PrecisionResolver looks up step and tick size for a symbol. It is not
// cached: every call fetches fresh exchange info.
type PrecisionResolver struct {
	source  ExchangeInfoSource
	metrics *metrics.Metrics
}

// NewPrecisionResolver creates a resolver. m may be nil.
func NewPrecisionResolver(source ExchangeInfoSource, m *metrics.Metrics) *PrecisionResolver {
	return &PrecisionResolver{source: source, metrics: m}
}

// Resolve never fails. Any lookup problem is logged and DefaultPrecision returned.
func (r *PrecisionResolver) Resolve(ctx context.Context, symbol string) Precision {
	p, reason, err := r.lookup(ctx, symbol)
	if err != nil {
		log.Ctx(ctx).Warn().
			Err(err).
			Str("symbol", symbol).
			Str("reason", reason).
			Float64("step_size", DefaultPrecision.StepSize).
			Float64("tick_size", DefaultPrecision.TickSize).
			Msg("⚠️ precision lookup failed, using defaults")
		r.metrics.PrecisionFallback(reason)
		return DefaultPrecision
	}
	log.Ctx(ctx).Debug().
		Str("symbol", symbol).
		Float64("step_size", p.StepSize).
		Float64("tick_size", p.TickSize).
		Msg("precision resolved")
	return p
}

func (r *PrecisionResolver) lookup(ctx context.Context, symbol string) (Precision, string, error) {
	if r.source == nil {
		return Precision{}, "no_source", errors.New("no exchange info source configured")
	}
	info, err := r.source.ExchangeInfo(ctx)
	if err != nil {
		return Precision{}, "fetch", fmt.Errorf("failed to get exchange info: %w", err)
	}
	if info == nil {
		return Precision{}, "fetch", errors.New("empty exchange info")
	}
	for _, s := range info.Symbols {
		if s.Symbol != symbol {
			continue
		}
		p, err := PrecisionFromFilters(s.Filters)
		if err != nil {
			return Precision{}, "filters", fmt.Errorf("%s: %w", symbol, err)
		}
		return p, "", nil
	}
	return Precision{}, "symbol", fmt.Errorf("%s: %w", symbol, ErrSymbolNotFound)
}

// PrecisionFromFilters reads tickSize from PRICE_FILTER and stepSize from
// LOT_SIZE, matching on filterType regardless of position in the list.
func PrecisionFromFilters(filters []map[string]interface{}) (Precision, error) {
	tick, err := filterValue(filters, filterTypePrice, "tickSize")
	if err != nil {
		return Precision{}, err
	}
	step, err := filterValue(filters, filterTypeLotSize, "stepSize")
	if err != nil {
		return Precision{}, err
	}
	return Precision{StepSize: step, TickSize: tick}, nil
}

func filterValue(filters []map[string]interface{}, filterType, key string) (float64, error) {
	for _, f := range filters {
		if t, _ := f["filterType"].(string); t != filterType {
			continue
		}
		v, err := positiveFloat(f[key])
		if err != nil {
			return 0, fmt.Errorf("%s.%s: %w", filterType, key, err)
		}
		return v, nil
	}
	return 0, fmt.Errorf("%s: %w", filterType, ErrFilterNotFound)
}

func positiveFloat(raw interface{}) (float64, error) {
	var v float64
	switch x := raw.(type) {
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse %q: %w", x, err)
		}
		v = f
	case float64:
		v = x
	case nil:
		return 0, errors.New("missing value")
	default:
		return 0, fmt.Errorf("unexpected type %T", raw)
	}
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-positive value %v", v)
	}
	return v, nil
}
