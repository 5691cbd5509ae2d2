package notify

import (
	"context"
	"time"

	"alertbridge/metrics"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const channelDiscord = "discord"

// Discord posts notifications to a Discord incoming webhook.
type Discord struct {
	url     string
	client  *resty.Client
	metrics *metrics.Metrics
}

// NewDiscord posts to webhookURL. An empty URL is allowed; every
// notification is then skipped with a warning.
func NewDiscord(webhookURL string, timeout time.Duration, m *metrics.Metrics) *Discord {
	return &Discord{
		url:     webhookURL,
		client:  resty.New().SetTimeout(timeout).SetHeader("Content-Type", "application/json"),
		metrics: m,
	}
}

// Notify posts once, without retry. Transport errors and non-2xx answers
// are logged and counted.
func (d *Discord) Notify(ctx context.Context, n Notification) {
	logger := log.Ctx(ctx)
	if d.url == "" {
		logger.Warn().Msg("DISCORD_WEBHOOK_URL not set, notification dropped")
		d.metrics.Notification(channelDiscord, ResultSkipped)
		return
	}

	resp, err := d.client.R().SetContext(ctx).SetBody(n).Post(d.url)
	if err != nil {
		logger.Error().Err(err).Msg("discord notification failed")
		d.metrics.Notification(channelDiscord, ResultFailed)
		return
	}
	if !resp.IsSuccess() {
		logger.Error().
			Int("status", resp.StatusCode()).
			Str("body", resp.String()).
			Msg("discord webhook rejected notification")
		d.metrics.Notification(channelDiscord, ResultFailed)
		return
	}
	d.metrics.Notification(channelDiscord, ResultSent)
}
