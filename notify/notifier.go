package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Embed colors.
const (
	ColorBuy  = 0x00FF00
	ColorSell = 0xFF0000
)

// Notification result labels.
const (
	ResultSent    = "sent"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
)

// Embed is one Discord embed block.
type Embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

// Notification is the Discord webhook payload. Other channels flatten it.
type Notification struct {
	Content string  `json:"content"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Text renders the notification as plain text.
func (n Notification) Text() string {
	var sb strings.Builder
	sb.WriteString(n.Content)
	for _, e := range n.Embeds {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		if e.Title != "" {
			sb.WriteString(e.Title)
			sb.WriteString("\n")
		}
		sb.WriteString(e.Description)
	}
	return sb.String()
}

// Notifier delivers operator messages. Delivery is best-effort: failures are
// logged by the implementation and never reach the caller.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Multi fans a notification out to every channel in order.
type Multi []Notifier

// Notify delivers n to each channel; a failing channel does not stop the rest.
func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifyOne(ctx, notifier, n)
		}
	}
}

func notifyOne(ctx context.Context, notifier Notifier, n Notification) {
	defer func() {
		if r := recover(); r != nil {
			log.Ctx(ctx).Error().Interface("panic", r).Msgf("%T panicked", notifier)
		}
	}()
	notifier.Notify(ctx, n)
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Notify(context.Context, Notification) {}

// EntryPlaced builds the success message for a submitted order.
func EntryPlaced(symbol, side, quantity string, entry, sl, tp1, tp2 float64, warnings []string) Notification {
	color, direction := ColorBuy, "Long"
	if side == "SELL" {
		color, direction = ColorSell, "Short"
	}
	desc := fmt.Sprintf("Direction: %s\nQuantity: %s\nEntry: %v\nStop loss: %v\nTP1: %v\nTP2: %v",
		direction, quantity, entry, sl, tp1, tp2)
	for _, w := range warnings {
		desc += "\n⚠️ " + w
	}
	return Notification{
		Embeds: []Embed{{
			Title:       fmt.Sprintf("🚀 Auto entry - %s", symbol),
			Description: desc,
			Color:       color,
		}},
	}
}

// OrderFailed reports an order the exchange rejected.
func OrderFailed(msg string) Notification {
	return Notification{Content: "❌ Order failed: " + msg}
}

// SystemError reports an unexpected failure while handling an alert.
func SystemError(msg string) Notification {
	return Notification{Content: "❌ System error: " + msg}
}
