package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.Alert(OutcomeSuccess)
	m.Alert(OutcomeSuccess)
	m.Alert(OutcomeExchange)
	m.Notification("discord", "ok")
	m.PrecisionFallback("fetch")
	m.ObserveOrderLatency(0.2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Alerts.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Alerts.WithLabelValues(OutcomeExchange)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Alerts.WithLabelValues(OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("discord", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PrecisionFallbacks.WithLabelValues("fetch")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.OrderLatency))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.Alert(OutcomeSuccess)
		m.Notification("discord", "ok")
		m.PrecisionFallback("fetch")
		m.ObserveOrderLatency(1)
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Alert(OutcomeRejected)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `alertbridge_alerts_total{outcome="rejected"} 1`)
}
