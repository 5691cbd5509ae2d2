package api

import (
	"fmt"

	"alertbridge/metrics"
	"alertbridge/middleware"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the HTTP surface. Only /webhook is rate limited, keyed on
// the client IP; X-Forwarded-For is honoured only from trustedProxies.
func NewRouter(webhook *WebhookHandler, ready *ReadyHandler, m *metrics.Metrics, limiter *middleware.IPRateLimiter, trustedProxies []string) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	r.Use(middleware.RequestLogger())

	r.GET("/health", HandleHealth)
	r.GET("/ready", ready.HandleReady)
	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.POST("/webhook", middleware.RateLimitMiddleware(limiter), webhook.HandleWebhook)

	return r, nil
}
