package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Notification metrics
	Transitions     *prometheus.CounterVec
	Errors          *prometheus.CounterVec
	ListResults     prometheus.Histogram
	EventsPublished *prometheus.CounterVec

	// Workspace slug cache
	WorkspaceCache *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics on reg
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "path"}),

		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_transitions_total",
			Help:      "Total number of applied notification state transitions",
		}, []string{"transition"}),
		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_errors_total",
			Help:      "Total number of failed notification operations by error kind",
		}, []string{"kind"}),
		ListResults: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "notification_list_results",
			Help:      "Number of notifications returned per list request",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_events_published_total",
			Help:      "Total number of notification events handed to the broker",
		}, []string{"status"}),

		WorkspaceCache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workspace_cache_lookups_total",
			Help:      "Workspace slug cache lookups",
		}, []string{"result"}),
	}
}
