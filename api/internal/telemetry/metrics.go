package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/irgordon/textcipher/api/internal/core/domain"
)

// Metrics owns the service collectors on a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	RequestTotal    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	TransformsTotal *prometheus.CounterVec
	EventsDropped   prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textcipher_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "textcipher_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		TransformsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textcipher_transforms_total",
				Help: "Total number of transforms by method, direction and outcome",
			},
			[]string{"method", "direction", "outcome"},
		),
		EventsDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "textcipher_activity_events_dropped_total",
				Help: "Activity events dropped because a subscriber buffer was full",
			},
		),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveTransform counts a finished transform. Failures are labelled with their error kind.
func (m *Metrics) ObserveTransform(_ context.Context, event domain.TransformEvent) {
	outcome := "success"
	if !event.Succeeded {
		outcome = event.ErrorKind
	}
	m.TransformsTotal.WithLabelValues(event.Method, event.Direction, outcome).Inc()
}

// ObserveRequest records one HTTP exchange against its route pattern.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.RequestTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
