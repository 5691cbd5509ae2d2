package market

import (
	"context"
	"fmt"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/rs/zerolog/log"
)

// BinanceDataSource exposes Binance USDⓈ-M futures metadata.
type BinanceDataSource struct {
	client *futures.Client
	name   string
}

// NewBinanceDataSource wraps an existing futures client.
func NewBinanceDataSource(client *futures.Client) *BinanceDataSource {
	return &BinanceDataSource{
		client: client,
		name:   "Binance",
	}
}

// GetName returns the data source name.
func (b *BinanceDataSource) GetName() string {
	return b.name
}

// ExchangeInfo fetches the full instrument list.
func (b *BinanceDataSource) ExchangeInfo(ctx context.Context) (*futures.ExchangeInfo, error) {
	info, err := b.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance ExchangeInfo failed: %w", err)
	}
	log.Ctx(ctx).Debug().
		Str("exchange", b.name).
		Int("symbols", len(info.Symbols)).
		Msg("exchange info")
	return info, nil
}

// HealthCheck reports whether the exchange info endpoint answers.
func (b *BinanceDataSource) HealthCheck(ctx context.Context) error {
	if _, err := b.ExchangeInfo(ctx); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("exchange", b.name).Msg("❌ health check failed")
		return fmt.Errorf("binance health check failed: %w", err)
	}
	return nil
}

// GetLatency measures one health-check round trip.
func (b *BinanceDataSource) GetLatency(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	err := b.HealthCheck(ctx)
	latency := time.Since(start)

	log.Ctx(ctx).Debug().Str("exchange", b.name).Dur("latency", latency).Msg("📊 exchange latency")
	return latency, err
}
