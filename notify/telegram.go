package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"alertbridge/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

const channelTelegram = "telegram"

// Telegram sends notifications as plain-text bot messages to one chat.
type Telegram struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	metrics *metrics.Metrics
}

// NewTelegram authenticates the bot (getMe) against the public Bot API.
func NewTelegram(token string, chatID int64, timeout time.Duration, m *metrics.Metrics) (*Telegram, error) {
	return NewTelegramWithEndpoint(token, chatID, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout}, m)
}

// NewTelegramWithEndpoint is NewTelegram against a custom Bot API endpoint,
// formatted like tgbotapi.APIEndpoint.
func NewTelegramWithEndpoint(token string, chatID int64, endpoint string, client *http.Client, m *metrics.Metrics) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init failed: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID, metrics: m}, nil
}

// Notify sends the flattened notification. The bot client has its own
// timeout; ctx only carries the logger.
func (t *Telegram) Notify(ctx context.Context, n Notification) {
	msg := tgbotapi.NewMessage(t.chatID, n.Text())
	if _, err := t.bot.Send(msg); err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("chat_id", t.chatID).Msg("telegram notification failed")
		t.metrics.Notification(channelTelegram, ResultFailed)
		return
	}
	t.metrics.Notification(channelTelegram, ResultSent)
}
