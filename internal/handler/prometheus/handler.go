package prometheus

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rush-skills/plane/pkg/metrics"
)

type Handler struct {
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

// New serves reg on /metrics and records request metrics into m
func New(reg *prometheus.Registry, m *metrics.Metrics) *Handler {
	return &Handler{
		registry: reg,
		metrics:  m,
	}
}

// Middleware records count and latency per route template, so ids in the
// path do not create new series. Unmatched routes share one label.
func (h *Handler) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		h.metrics.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		h.metrics.HTTPDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

func (h *Handler) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))
}
