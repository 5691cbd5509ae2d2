package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"alertbridge/config"
	"alertbridge/market"
	"alertbridge/metrics"
	"alertbridge/notify"
	"alertbridge/trader"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// maxAlertBytes bounds the webhook body; alerts are a few hundred bytes.
const maxAlertBytes = 64 << 10

// PrecisionResolver looks up symbol precision. It never fails; unknown
// symbols resolve to defaults.
type PrecisionResolver interface {
	Resolve(ctx context.Context, symbol string) market.Precision
}

// WebhookHandler turns alerts into market orders.
type WebhookHandler struct {
	precision     PrecisionResolver
	trader        trader.Trader
	notifier      notify.Notifier
	risk          config.RiskConfig
	defaultSymbol string
	notifyTimeout time.Duration
	metrics       *metrics.Metrics
	newOrderID    func() string
}

// NewWebhookHandler builds the handler from the process config. A nil
// notifier drops notifications.
func NewWebhookHandler(precision PrecisionResolver, tr trader.Trader, notifier notify.Notifier, cfg *config.Config, m *metrics.Metrics) *WebhookHandler {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &WebhookHandler{
		precision:     precision,
		trader:        tr,
		notifier:      notifier,
		risk:          cfg.Risk,
		defaultSymbol: cfg.DefaultSymbol,
		notifyTimeout: cfg.NotifyTimeout,
		metrics:       m,
		newOrderID:    newClientOrderID,
	}
}

// newClientOrderID fits Binance's 36-char newClientOrderId limit.
func newClientOrderID() string {
	return "ab-" + uuid.NewString()[:32]
}

// HandleWebhook runs one alert through validate, size, submit and notify.
// Every request that reaches submission sends exactly one notification.
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	ctx := c.Request.Context()
	logger := log.Ctx(ctx)

	notified := false
	sendOnce := func(n notify.Notification) {
		if notified {
			return
		}
		notified = true
		// A broken channel must not change the response.
		defer func() {
			if r := recover(); r != nil {
				logger.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("notifier panicked")
			}
		}()
		// Report even when the caller has gone away.
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.notifyTimeout)
		defer cancel()
		h.notifier.Notify(nctx, n)
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("webhook handler panicked")
			h.fail(c, fmt.Errorf("panic: %v", r), sendOnce)
		}
	}()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAlertBytes)
	body, err := c.GetRawData()
	if err != nil {
		h.reject(c, errNoJSON)
		return
	}
	alert, err := ParseAlert(body, h.defaultSymbol)
	if err != nil {
		h.reject(c, err)
		return
	}
	logger.Info().
		Str("symbol", alert.Symbol).
		Str("side", string(alert.Side)).
		Float64("entry", alert.Entry).
		Float64("sl", alert.SL).
		Float64("tp1", alert.TP1).
		Float64("tp2", alert.TP2).
		Msg("alert received")

	prec := h.precision.Resolve(ctx, alert.Symbol)

	qty, err := trader.ComputeQuantity(alert.Entry, h.risk.NotionalUSDT, prec.StepSize)
	if err != nil {
		h.reject(c, invalid("computed quantity: %v", err))
		return
	}
	if !qty.IsPositive() {
		h.reject(c, invalid("computed quantity <= 0"))
		return
	}
	notional := qty.InexactFloat64() * alert.Entry
	if err := trader.ValidateNotional(alert.Symbol, notional, &h.risk); err != nil {
		h.reject(c, invalid("%v", err))
		return
	}

	warnings := trader.CheckLevels(alert.Side, alert.Entry, alert.SL, alert.TP1, alert.TP2)
	for _, w := range warnings {
		logger.Warn().Str("symbol", alert.Symbol).Msg(w)
	}

	req := trader.OrderRequest{
		Symbol:        alert.Symbol,
		Side:          alert.Side,
		Type:          trader.OrderTypeMarket,
		Quantity:      qty,
		ClientOrderID: h.newOrderID(),
	}
	start := time.Now()
	order, err := h.trader.PlaceMarketOrder(ctx, req)
	h.metrics.ObserveOrderLatency(time.Since(start).Seconds())
	if err != nil {
		var exErr *trader.ExchangeError
		if errors.As(err, &exErr) {
			msg := exErr.Error()
			logger.Error().Int64("code", exErr.Code).Str("symbol", alert.Symbol).Msg(msg)
			sendOnce(notify.OrderFailed(msg))
			h.metrics.Alert(metrics.OutcomeExchange)
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		h.fail(c, err, sendOnce)
		return
	}

	logger.Info().
		Str("symbol", alert.Symbol).
		Str("quantity", qty.String()).
		Str("client_order_id", req.ClientOrderID).
		Interface("order", order).
		Msg("order placed")
	sendOnce(notify.EntryPlaced(alert.Symbol, string(alert.Side), qty.String(),
		alert.Entry, alert.SL, alert.TP1, alert.TP2, warnings))
	h.metrics.Alert(metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, gin.H{"status": "success", "order": order})
}

func (h *WebhookHandler) reject(c *gin.Context, err error) {
	log.Ctx(c.Request.Context()).Warn().Err(err).Msg("alert rejected")
	h.metrics.Alert(metrics.OutcomeRejected)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (h *WebhookHandler) fail(c *gin.Context, err error, sendOnce func(notify.Notification)) {
	msg := "unexpected error: " + err.Error()
	log.Ctx(c.Request.Context()).Error().Err(err).Msg("alert failed")
	sendOnce(notify.SystemError(msg))
	h.metrics.Alert(metrics.OutcomeError)
	if c.Writer.Written() {
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
