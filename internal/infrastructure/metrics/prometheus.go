// Package metrics adapts the Prometheus client into the ambient HTTP and
// authorization metrics this module exposes at /metrics.
package metrics

import (
	"bytes"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpc_capabilities_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rpc_capabilities_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	authorizationDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpc_capabilities_authorization_decisions_total",
			Help: "Total number of restricted-method authorization decisions",
		},
		[]string{"method_key", "allowed"},
	)

	caveatFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpc_capabilities_caveat_failures_total",
			Help: "Total number of caveat pipeline failures by caveat type",
		},
		[]string{"caveat_type"},
	)

	permissionRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpc_capabilities_permission_requests_total",
			Help: "Total number of requestPermissions outcomes",
		},
		[]string{"result"},
	)
)

// PrometheusMiddleware collects HTTP metrics for every request through the
// transport layer.
func PrometheusMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		method := c.Method()
		path := c.Path()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		return err
	}
}

// Recorder is a domain.MetricsRecorder backed by the Prometheus counters
// above. It is the concrete MetricsRecorder a Controller is given.
type Recorder struct{}

// ObserveAuthorization records one restricted-method authorization decision.
func (Recorder) ObserveAuthorization(methodKey string, allowed bool) {
	label := "false"
	if allowed {
		label = "true"
	}
	authorizationDecisionsTotal.WithLabelValues(methodKey, label).Inc()
}

// ObserveCaveatFailure records one caveat pipeline failure.
func (Recorder) ObserveCaveatFailure(caveatType string) {
	caveatFailuresTotal.WithLabelValues(caveatType).Inc()
}

// ObservePermissionRequest records one requestPermissions outcome
// ("fast_path", "granted", "rejected", "invalid_method", or "error").
func (Recorder) ObservePermissionRequest(result string) {
	permissionRequestsTotal.WithLabelValues(result).Inc()
}

// PrometheusHandler returns a Fiber handler that exposes the process's
// Prometheus metrics in text exposition format.
func PrometheusHandler() fiber.Handler {
	return func(c fiber.Ctx) error {
		c.Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

		metricFamilies, err := prometheus.DefaultGatherer.Gather()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error gathering metrics: " + err.Error())
		}

		var buf bytes.Buffer
		encoder := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
		for _, mf := range metricFamilies {
			if err := encoder.Encode(mf); err != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Error encoding metrics: " + err.Error())
			}
		}

		return c.SendString(buf.String())
	}
}
