// Package metrics provides Prometheus metrics for the places manager and
// daemon.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one manager. Each instance owns its
// registry, so several managers (and tests) can coexist in a process.
//
// All methods are safe on a nil *Metrics.
type Metrics struct {
	Registry *prometheus.Registry

	// List maintenance
	MountRebuilds   prometheus.Counter
	BookmarkReloads prometheus.Counter
	RebuildDuration *prometheus.HistogramVec
	PlacesCount     *prometheus.GaugeVec
	EventsEmitted   *prometheus.CounterVec

	// Launch
	Launches *prometheus.CounterVec

	// Daemon API
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	StreamClients   prometheus.Gauge
}

// New creates a Metrics with a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		MountRebuilds: f.NewCounter(prometheus.CounterOpts{
			Name: "places_mount_rebuilds_total",
			Help: "Total number of device/network list rebuilds",
		}),
		BookmarkReloads: f.NewCounter(prometheus.CounterOpts{
			Name: "places_bookmark_reloads_total",
			Help: "Total number of bookmarks file reloads",
		}),
		RebuildDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "places_rebuild_duration_seconds",
			Help:    "Time to rebuild a places list",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5},
		}, []string{"list"}),
		PlacesCount: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "places_entries",
			Help: "Number of entries per places list",
		}, []string{"kind"}),
		EventsEmitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "places_events_total",
			Help: "Total number of change events published",
		}, []string{"event"}),
		Launches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "places_launches_total",
			Help: "Total number of place launches by outcome",
		}, []string{"outcome"}),
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "places_http_requests_total",
			Help: "Total number of daemon API requests",
		}, []string{"method", "path", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "places_http_request_duration_seconds",
			Help:    "Daemon API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		StreamClients: f.NewGauge(prometheus.GaugeOpts{
			Name: "places_stream_clients",
			Help: "Number of connected event stream clients",
		}),
	}
}

func (m *Metrics) RecordMountRebuild(d time.Duration) {
	if m == nil {
		return
	}
	m.MountRebuilds.Inc()
	m.RebuildDuration.WithLabelValues("mounts").Observe(d.Seconds())
}

func (m *Metrics) RecordBookmarkReload(d time.Duration) {
	if m == nil {
		return
	}
	m.BookmarkReloads.Inc()
	m.RebuildDuration.WithLabelValues("bookmarks").Observe(d.Seconds())
}

func (m *Metrics) SetPlaces(kind string, n int) {
	if m == nil {
		return
	}
	m.PlacesCount.WithLabelValues(kind).Set(float64(n))
}

func (m *Metrics) RecordEvent(event string) {
	if m == nil {
		return
	}
	m.EventsEmitted.WithLabelValues(event).Inc()
}

func (m *Metrics) RecordLaunch(outcome string) {
	if m == nil {
		return
	}
	m.Launches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) StreamConnected() {
	if m == nil {
		return
	}
	m.StreamClients.Inc()
}

func (m *Metrics) StreamDisconnected() {
	if m == nil {
		return
	}
	m.StreamClients.Dec()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware records request counts and durations. path should be the
// route pattern, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) Middleware(path string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.RequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
