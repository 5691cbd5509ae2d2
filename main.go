package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alertbridge/api"
	"alertbridge/config"
	"alertbridge/market"
	"alertbridge/metrics"
	"alertbridge/middleware"
	"alertbridge/notify"
	"alertbridge/trader"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)
	cfg.LogSummary()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server exited")
}

func setupLogging(cfg *config.Config) {
	zerolog.SetGlobalLevel(cfg.LogLevel)
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	// log.Ctx falls back to the global logger outside a request.
	zerolog.DefaultContextLogger = &log.Logger
}

func buildNotifier(cfg *config.Config, m *metrics.Metrics) notify.Notifier {
	notifiers := notify.Multi{notify.NewDiscord(cfg.DiscordWebhookURL, cfg.NotifyTimeout, m)}
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.NotifyTimeout, m)
		if err != nil {
			log.Error().Err(err).Msg("telegram disabled")
		} else {
			notifiers = append(notifiers, tg)
		}
	}
	return notifiers
}

func run(ctx context.Context, cfg *config.Config) error {
	gin.SetMode(cfg.GinMode)

	m := metrics.New()
	client := trader.NewFuturesClient(cfg.BinanceAPIKey, cfg.BinanceAPISecret, cfg.BinanceTestnet)
	datasource := market.NewBinanceDataSource(client)

	webhook := api.NewWebhookHandler(
		market.NewPrecisionResolver(datasource, m),
		trader.NewFuturesTrader(client),
		buildNotifier(cfg, m),
		cfg,
		m,
	)
	limiter := middleware.NewIPRateLimiter(ctx, rate.Limit(cfg.WebhookRateLimit), cfg.WebhookRateBurst)
	router, err := api.NewRouter(webhook, api.NewReadyHandler(datasource), m, limiter, cfg.TrustedProxies)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("🚀 webhook server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
