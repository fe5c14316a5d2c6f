package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Business metrics
	LeadQueries     *prometheus.CounterVec
	LeadWrites      *prometheus.CounterVec
	ExportsCreated  *prometheus.CounterVec
	UsersRegistered prometheus.Counter
	LoginAttempts   *prometheus.CounterVec
	LeadsByStatus   *prometheus.GaugeVec

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
}

// New creates a Metrics instance registered on reg.
// Pass prometheus.DefaultRegisterer in main and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
			},
			[]string{"method", "path"},
		),

		LeadQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lead_queries_total",
				Help: "Total number of lead queries",
			},
			[]string{"kind"}, // list, preview, export
		),
		LeadWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lead_writes_total",
				Help: "Total number of lead writes",
			},
			[]string{"operation"}, // create, update, delete
		),
		ExportsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lead_exports_total",
				Help: "Total number of lead exports",
			},
			[]string{"format"},
		),
		UsersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "users_registered_total",
			Help: "Total number of users registered",
		}),
		LoginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "login_attempts_total",
				Help: "Total number of login attempts",
			},
			[]string{"status"}, // success, failed
		),
		LeadsByStatus: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "leads_by_status",
				Help: "Number of stored leads per status, refreshed by the stats job",
			},
			[]string{"status"},
		),

		CacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache_type"},
		),
		CacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache_type"},
		),
	}
}

// Middleware creates an Echo middleware for Prometheus metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			// route pattern keeps label cardinality bounded (/api/leads/:id)
			path := c.Path()
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			code := strconv.Itoa(status)

			m.HTTPRequestsTotal.WithLabelValues(req.Method, path, code).Inc()
			m.HTTPRequestDuration.WithLabelValues(req.Method, path, code).Observe(time.Since(start).Seconds())
			m.HTTPResponseSize.WithLabelValues(req.Method, path).Observe(float64(c.Response().Size))

			return err
		}
	}
}

// RecordLeadQuery increments the lead query counter for kind
func (m *Metrics) RecordLeadQuery(kind string) {
	m.LeadQueries.WithLabelValues(kind).Inc()
}

// RecordLeadWrite increments the lead write counter for operation
func (m *Metrics) RecordLeadWrite(operation string) {
	m.LeadWrites.WithLabelValues(operation).Inc()
}

// RecordExportCreated increments exports created counter
func (m *Metrics) RecordExportCreated(format string) {
	m.ExportsCreated.WithLabelValues(format).Inc()
}

// RecordUserRegistered increments users registered counter
func (m *Metrics) RecordUserRegistered() {
	m.UsersRegistered.Inc()
}

// RecordLoginAttempt increments login attempts counter
func (m *Metrics) RecordLoginAttempt(success bool) {
	status := "failed"
	if success {
		status = "success"
	}
	m.LoginAttempts.WithLabelValues(status).Inc()
}

// SetLeadsByStatus replaces the per-status gauges; statuses missing from counts drop to zero
func (m *Metrics) SetLeadsByStatus(statuses []string, counts map[string]int64) {
	for _, s := range statuses {
		m.LeadsByStatus.WithLabelValues(s).Set(float64(counts[s]))
	}
}

// RecordCacheHit increments cache hits counter
func (m *Metrics) RecordCacheHit(cacheType string) {
	m.CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss increments cache misses counter
func (m *Metrics) RecordCacheMiss(cacheType string) {
	m.CacheMisses.WithLabelValues(cacheType).Inc()
}
