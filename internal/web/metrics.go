package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"estada-feliz/internal/theme"
)

// Metrics owns a private Prometheus registry for the desk.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	logins   *prometheus.CounterVec
	themes   *prometheus.CounterVec
}

// NewMetrics registers the desk collectors along with the Go and process
// collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "estada_http_requests_total",
			Help: "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "estada_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "estada_login_attempts_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		themes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "estada_theme_applied_total",
			Help: "Rendered pages by applied theme variant.",
		}, []string{"variant"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.duration, m.logins, m.themes,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observeRequest(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) loginAttempt(result string) {
	m.logins.WithLabelValues(result).Inc()
}

// themeApplied counts known variants by name and everything else as custom,
// keeping label cardinality bounded.
func (m *Metrics) themeApplied(value string) {
	label := "custom"
	if theme.Known(value) {
		v, _ := theme.ForClass(value)
		label = string(v)
	}
	m.themes.WithLabelValues(label).Inc()
}
