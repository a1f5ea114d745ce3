package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.RecordMountRebuild(time.Millisecond)
	a.RecordMountRebuild(time.Millisecond)

	assert.Equal(t, 2.0, counterValue(t, a))
	assert.Equal(t, 0.0, counterValue(t, b))
}

func counterValue(t *testing.T, m *Metrics) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.MountRebuilds.Write(&out))
	return out.GetCounter().GetValue()
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordMountRebuild(time.Second)
	m.RecordBookmarkReload(time.Second)
	m.SetPlaces("devices", 3)
	m.RecordEvent("devices-updated")
	m.RecordLaunch("ok")
	m.StreamConnected()
	m.StreamDisconnected()

	h := m.Middleware("/x", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.SetPlaces("bookmarks", 4)
	m.RecordEvent("bookmarks-updated")

	api := m.Middleware("/api/places", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	api.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/places", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `places_entries{kind="bookmarks"} 4`)
	assert.Contains(t, body, `places_events_total{event="bookmarks-updated"} 1`)
	assert.Contains(t, body, `places_http_requests_total{method="GET",path="/api/places",status="418"} 1`)
}
