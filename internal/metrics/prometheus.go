// Package metrics provides Prometheus metrics for the web service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedRoute = "unmatched"

// Metrics holds all Prometheus metrics.
type Metrics struct {
	gatherer prometheus.Gatherer

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
	tierResolutions  *prometheus.CounterVec
	tierMutations    *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shelfmark_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shelfmark_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		requestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "shelfmark_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),
		tierResolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shelfmark_tier_resolutions_total",
				Help: "Tier data resolved for a render pass, by effective tier",
			},
			[]string{"tier"},
		),
		tierMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shelfmark_tier_admin_mutations_total",
				Help: "Admin changes to tier features and limits",
			},
			[]string{"method", "status"},
		),
	}
}

// Middleware records request counts, latency and in-flight requests per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.requestsInFlight.Inc()
		defer m.requestsInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := strconv.Itoa(c.Writer.Status())
		m.requestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// MutationMiddleware counts admin requests that change tier configuration.
func (m *Metrics) MutationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Request.Method == http.MethodGet {
			return
		}
		m.tierMutations.WithLabelValues(c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// ObserveTier records that a render pass was bound to tier.
func (m *Metrics) ObserveTier(tier string) {
	m.tierResolutions.WithLabelValues(tier).Inc()
}

// Handler serves the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
