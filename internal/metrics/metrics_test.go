package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/needsradar/engine"
	"github.com/spektr-org/needsradar/internal/logging"
	"github.com/spektr-org/needsradar/loader"
	"github.com/spektr-org/needsradar/session"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestCoordinatorEventsAreCounted(t *testing.T) {
	m := New(false)
	ds, err := engine.NewDataset([]engine.Record{{Region: "Maule", Axis: "A"}}, "x")
	require.NoError(t, err)

	c, err := session.New(context.Background(), ds,
		session.WithLogger(logging.NewNopLogger()),
		session.WithObserver(m))
	require.NoError(t, err)

	_, err = c.HandleClick(context.Background(), session.ClickEvent{Chart: "radar", Label: "Maule"})
	require.NoError(t, err)
	_, err = c.HandleClick(context.Background(), session.ClickEvent{Chart: "radar", Label: "Nowhere"})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("radar", "true", session.ReasonFocused)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("radar", "false", session.ReasonUnknownRegion)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.deriveSeconds))

	out := scrape(t, m)
	assert.Contains(t, out, "needsradar_engine_derive_seconds_count 2")
}

func TestHTTPAndWatchers(t *testing.T) {
	m := New(true)
	m.ObserveHTTP(http.MethodGet, "/api/v1/options", 200, 3*time.Millisecond)
	m.WatchSessions(func() int { return 4 })

	cache := loader.NewCache(nil, logging.NewNopLogger())
	m.WatchCache(cache)
	_, err := cache.Load(context.Background(), "k", "x", func() (*engine.Dataset, error) {
		return engine.NewDataset(nil, "x")
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/options", "200")))

	out := scrape(t, m)
	assert.Contains(t, out, "needsradar_session_live 4")
	assert.Contains(t, out, `needsradar_cache_lookups_total{result="miss"} 1`)
	assert.Contains(t, out, "go_goroutines")
}
