package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// SignInTotal counts sign-in attempts by outcome.
	SignInTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "account_sign_in_total",
		Help: "Sign-in attempts by outcome.",
	}, []string{"outcome"})

	// SessionResolutionsTotal counts per-request identity resolutions by kind.
	SessionResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "account_session_resolutions_total",
		Help: "Per-request identity resolutions by resulting identity kind.",
	}, []string{"identity"})

	// AdmissionsTotal counts gate decisions by policy and result.
	AdmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "account_gate_admissions_total",
		Help: "Authorization gate decisions.",
	}, []string{"policy", "result"})

	// SettingsBatchesTotal counts settings batches by outcome.
	SettingsBatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "account_settings_batches_total",
		Help: "Settings change batches by outcome.",
	}, []string{"outcome"})
)

// PrometheusMiddleware records request count and latency. The route
// template is used as the path label to bound cardinality.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
