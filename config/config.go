package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPort          = 8000
	DefaultSymbol        = "BTCUSDT"
	DefaultNotifyTimeout = 5 * time.Second
	DefaultRateLimit     = 5.0
	DefaultRateBurst     = 10
)

// Config is the process-wide configuration. It is built once by Load and
// only read afterwards.
type Config struct {
	BinanceAPIKey    string
	BinanceAPISecret string
	BinanceTestnet   bool

	DiscordWebhookURL string
	TelegramBotToken  string
	TelegramChatID    int64

	Port          int
	DefaultSymbol string
	NotifyTimeout time.Duration

	WebhookRateLimit float64
	WebhookRateBurst int
	// TrustedProxies may set X-Forwarded-For. Empty means the client IP is
	// always the connection's remote address.
	TrustedProxies []string

	LogLevel  zerolog.Level
	LogFormat string
	GinMode   string

	Risk RiskConfig
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		BinanceAPIKey:     getenv("BINANCE_API_KEY"),
		BinanceAPISecret:  getenv("BINANCE_API_SECRET"),
		DiscordWebhookURL: strings.TrimSpace(getenv("DISCORD_WEBHOOK_URL")),
		TelegramBotToken:  strings.TrimSpace(getenv("TELEGRAM_BOT_TOKEN")),
		DefaultSymbol:     strings.ToUpper(stringOr(getenv("DEFAULT_SYMBOL"), DefaultSymbol)),
		LogFormat:         strings.ToLower(stringOr(getenv("LOG_FORMAT"), "json")),
		GinMode:           stringOr(getenv("GIN_MODE"), "release"),
		TrustedProxies:    splitList(getenv("TRUSTED_PROXIES")),
		Risk:              *DefaultRiskConfig(),
	}

	var err error
	if cfg.BinanceTestnet, err = parseBool(getenv, "BINANCE_TESTNET", false); err != nil {
		return nil, err
	}
	if cfg.Port, err = parseInt(getenv, "PORT", DefaultPort); err != nil {
		return nil, err
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT out of range: %d", cfg.Port)
	}
	if cfg.NotifyTimeout, err = parseDuration(getenv, "NOTIFY_TIMEOUT", DefaultNotifyTimeout); err != nil {
		return nil, err
	}
	if cfg.WebhookRateLimit, err = parseFloat(getenv, "WEBHOOK_RATE_LIMIT", DefaultRateLimit); err != nil {
		return nil, err
	}
	if cfg.WebhookRateBurst, err = parseInt(getenv, "WEBHOOK_RATE_BURST", DefaultRateBurst); err != nil {
		return nil, err
	}
	if cfg.Risk.NotionalUSDT, err = parseFloat(getenv, "NOTIONAL_USDT", cfg.Risk.NotionalUSDT); err != nil {
		return nil, err
	}
	if cfg.Risk.NotionalUSDT <= 0 {
		return nil, fmt.Errorf("NOTIONAL_USDT must be > 0, got %v", cfg.Risk.NotionalUSDT)
	}
	if cfg.Risk.MaxNotionalUSDT, err = parseFloat(getenv, "MAX_NOTIONAL_USDT", cfg.Risk.MaxNotionalUSDT); err != nil {
		return nil, err
	}

	if raw := strings.TrimSpace(getenv("TELEGRAM_CHAT_ID")); raw != "" {
		cfg.TelegramChatID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", raw, err)
		}
	}

	cfg.LogLevel = zerolog.InfoLevel
	if raw := strings.TrimSpace(getenv("LOG_LEVEL")); raw != "" {
		cfg.LogLevel, err = zerolog.ParseLevel(strings.ToLower(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", raw, err)
		}
	}

	return cfg, nil
}

// TelegramEnabled reports whether both bot token and chat id are present.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// LogSummary prints the effective configuration without secrets.
func (c *Config) LogSummary() {
	log.Info().
		Int("port", c.Port).
		Bool("testnet", c.BinanceTestnet).
		Bool("api_key_set", c.BinanceAPIKey != "").
		Bool("discord", c.DiscordWebhookURL != "").
		Bool("telegram", c.TelegramEnabled()).
		Float64("notional_usdt", c.Risk.NotionalUSDT).
		Float64("max_notional_usdt", c.Risk.MaxNotionalUSDT).
		Str("default_symbol", c.DefaultSymbol).
		Dur("notify_timeout", c.NotifyTimeout).
		Msg("configuration loaded")
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func stringOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func parseInt(getenv func(string) string, key string, def int) (int, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func parseFloat(getenv func(string) string, key string, def float64) (float64, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func parseBool(getenv func(string) string, key string, def bool) (bool, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func parseDuration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}
