package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// HandleHealth is the liveness probe. It does not touch the exchange.
func HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// LatencyChecker measures a round trip to the exchange.
type LatencyChecker interface {
	GetLatency(ctx context.Context) (time.Duration, error)
}

// ReadyHandler serves the readiness probe.
type ReadyHandler struct {
	checker LatencyChecker
}

// NewReadyHandler probes readiness through checker.
func NewReadyHandler(checker LatencyChecker) *ReadyHandler {
	return &ReadyHandler{checker: checker}
}

// HandleReady reports whether exchange info is reachable.
func (h *ReadyHandler) HandleReady(c *gin.Context) {
	latency, err := h.checker.GetLatency(c.Request.Context())
	if err != nil {
		log.Ctx(c.Request.Context()).Warn().Err(err).Msg("readiness check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "latency_ms": latency.Milliseconds()})
}
