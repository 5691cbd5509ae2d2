package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"alertbridge/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscord_PostsPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	m := metrics.New()
	d := NewDiscord(srv.URL, time.Second, m)
	d.Notify(context.Background(), EntryPlaced("BTCUSDT", "BUY", "0.1", 100, 95, 105, 110, nil))

	assert.Equal(t, "", got["content"])
	embeds, ok := got["embeds"].([]any)
	require.True(t, ok)
	require.Len(t, embeds, 1)
	embed := embeds[0].(map[string]any)
	assert.Equal(t, "🚀 Auto entry - BTCUSDT", embed["title"])
	assert.Equal(t, float64(ColorBuy), embed["color"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(channelDiscord, ResultSent)))
}

func TestDiscord_OmitsEmptyEmbeds(t *testing.T) {
	var raw map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	NewDiscord(srv.URL, time.Second, nil).Notify(context.Background(), OrderFailed("x"))

	assert.Contains(t, raw, "content")
	assert.NotContains(t, raw, "embeds")
}

func TestDiscord_EmptyURLSkips(t *testing.T) {
	m := metrics.New()
	d := NewDiscord("", time.Second, m)

	d.Notify(context.Background(), SystemError("x"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(channelDiscord, ResultSkipped)))
}

func TestDiscord_Non2xxIsSwallowed(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Cannot send an empty message","code":50006}`))
	}))
	defer srv.Close()

	m := metrics.New()
	NewDiscord(srv.URL, time.Second, m).Notify(context.Background(), SystemError("x"))

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "no retry")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(channelDiscord, ResultFailed)))
}

func TestDiscord_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	m := metrics.New()
	d := NewDiscord(srv.URL, 50*time.Millisecond, m)

	start := time.Now()
	d.Notify(context.Background(), SystemError("slow"))

	assert.Less(t, time.Since(start), 250*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(channelDiscord, ResultFailed)))
}
