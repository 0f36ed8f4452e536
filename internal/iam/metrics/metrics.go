package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	AuthzDecisions  *prometheus.CounterVec
	AuditEvents     *prometheus.CounterVec
	GrantsIssued    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates the collectors on a private registry together with Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		AuthzDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "iam_authz_decisions_total",
			Help: "Guard decisions by route template and outcome.",
		}, []string{"route", "decision"}),
		AuditEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "iam_audit_events_total",
			Help: "Audit sink outcomes by action.",
		}, []string{"action", "outcome"}),
		GrantsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "iam_temp_grants_issued_total",
			Help: "Temporary permission grants issued by permission code.",
		}, []string{"permission"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "iam_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.AuthzDecisions,
		m.AuditEvents,
		m.GrantsIssued,
		m.RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Decision(route, decision string) {
	if m == nil {
		return
	}
	m.AuthzDecisions.WithLabelValues(route, decision).Inc()
}

func (m *Metrics) Audit(action, outcome string) {
	if m == nil {
		return
	}
	m.AuditEvents.WithLabelValues(action, outcome).Inc()
}

// OtherPermission labels grants of codes outside the catalog.
const OtherPermission = "other"

func (m *Metrics) GrantIssued(permission string) {
	if m == nil {
		return
	}
	m.GrantsIssued.WithLabelValues(permission).Inc()
}

// Middleware observes request latency labelled by route template, not raw path.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil {
				return next(c)
			}
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.RequestDuration.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}
