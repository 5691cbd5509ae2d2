package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "alertbridge"

// Outcome labels for processed alerts.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeExchange = "exchange_error"
	OutcomeError    = "error"
)

// Metrics holds the pipeline collectors. A nil *Metrics is valid and
// records nothing, so components can be built without a registry.
type Metrics struct {
	registry *prometheus.Registry

	Alerts             *prometheus.CounterVec // by outcome
	Notifications      *prometheus.CounterVec // by channel, result
	PrecisionFallbacks *prometheus.CounterVec // by reason
	OrderLatency       prometheus.Histogram
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Webhook alerts by final outcome.",
		}, []string{"outcome"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Operator notifications by channel and result.",
		}, []string{"channel", "result"}),
		PrecisionFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "precision_fallback_total",
			Help:      "Precision lookups that fell back to defaults.",
		}, []string{"reason"}),
		OrderLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_submit_seconds",
			Help:      "Latency of market order submission.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.Alerts, m.Notifications, m.PrecisionFallbacks, m.OrderLatency)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Alert counts one processed alert by its final outcome.
func (m *Metrics) Alert(outcome string) {
	if m == nil {
		return
	}
	m.Alerts.WithLabelValues(outcome).Inc()
}

// Notification counts one delivery attempt on a channel.
func (m *Metrics) Notification(channel, result string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(channel, result).Inc()
}

// PrecisionFallback counts a lookup that fell back to default precision.
func (m *Metrics) PrecisionFallback(reason string) {
	if m == nil {
		return
	}
	m.PrecisionFallbacks.WithLabelValues(reason).Inc()
}

// ObserveOrderLatency records how long an order submission took.
func (m *Metrics) ObserveOrderLatency(seconds float64) {
	if m == nil {
		return
	}
	m.OrderLatency.Observe(seconds)
}
