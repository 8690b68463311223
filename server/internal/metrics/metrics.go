// Package metrics exposes locavail counters in the Prometheus text format.
package metrics

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Metrics collects process-wide counters on a private registry. It
// implements sheets.Observer. All methods are safe for concurrent use.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
	fetchErrors  *prometheus.CounterVec
	cacheClears  prometheus.Counter
	renders      prometheus.Counter
	renderErrors prometheus.Counter
	mutations    *prometheus.CounterVec

	mu       sync.Mutex
	sessions func() int
}

// New returns a Metrics with every collector registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "locavail_cache_hits_total",
			Help: "Table loads served from the cache.",
		}, []string{"source"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "locavail_cache_misses_total",
			Help: "Table loads that went to the network.",
		}, []string{"source"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "locavail_fetch_errors_total",
			Help: "Failed table fetches.",
		}, []string{"source"}),
		cacheClears: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "locavail_cache_clears_total",
			Help: "Manual cache refreshes.",
		}),
		renders: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "locavail_renders_total",
			Help: "Availability views computed.",
		}),
		renderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "locavail_render_errors_total",
			Help: "Availability views aborted by fetch or schema errors.",
		}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "locavail_mutations_total",
			Help: "Master list edits applied.",
		}, []string{"op"}),
	}

	reg.MustRegister(
		m.cacheHits, m.cacheMisses, m.fetchErrors,
		m.cacheClears, m.renders, m.renderErrors, m.mutations,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "locavail_sessions",
			Help: "Sessions currently held in memory.",
		}, m.sessionCount),
	)
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return m
}

// SourceLabel maps a sheet URL to a short label: the value of its "sheet"
// query parameter when present, otherwise host and path.
func SourceLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if s := u.Query().Get("sheet"); s != "" {
		return s
	}
	return u.Host + u.Path
}

// CacheHit counts a load of url answered from the cache.
func (m *Metrics) CacheHit(url string) { m.cacheHits.WithLabelValues(SourceLabel(url)).Inc() }

// CacheMiss counts a load of url that had to go to the network.
func (m *Metrics) CacheMiss(url string) { m.cacheMisses.WithLabelValues(SourceLabel(url)).Inc() }

// FetchFailed counts a failed network load of url.
func (m *Metrics) FetchFailed(url string) { m.fetchErrors.WithLabelValues(SourceLabel(url)).Inc() }

// CacheCleared counts a manual cache clear.
func (m *Metrics) CacheCleared() { m.cacheClears.Inc() }

// Render records one view computation and whether it failed.
func (m *Metrics) Render(err error) {
	m.renders.Inc()
	if err != nil {
		m.renderErrors.Inc()
	}
}

// Mutation records one applied master-list edit.
func (m *Metrics) Mutation(op string) { m.mutations.WithLabelValues(op).Inc() }

// SetSessionsFunc installs the source of the locavail_sessions gauge.
func (m *Metrics) SetSessionsFunc(f func() int) {
	m.mu.Lock()
	m.sessions = f
	m.mu.Unlock()
}

func (m *Metrics) sessionCount() float64 {
	m.mu.Lock()
	f := m.sessions
	m.mu.Unlock()
	if f == nil {
		return 0
	}
	return float64(f())
}

// Gather returns every metric family ordered by name.
func (m *Metrics) Gather() ([]*dto.MetricFamily, error) {
	return m.registry.Gather()
}

// ServeHTTP writes the text exposition of the registry.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	m.handler.ServeHTTP(w, r)
}
