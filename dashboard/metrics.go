package dashboard

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the HTTP surface.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RegionRenders   *prometheus.CounterVec
	RenderedPoints  prometheus.Histogram
}

// NewMetrics constructs the dashboard collectors and registers them on registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "HTTP requests by route and status code.",
		},
		[]string{"route", "status"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	renders := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_region_renders_total",
			Help: "Interactive chart renders by selected region.",
		},
		[]string{"region"},
	)
	points := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dashboard_rendered_points",
			Help:    "Points plotted per interactive render.",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		},
	)

	registry.MustRegister(requests, duration, renders, points)

	return &Metrics{
		RequestsTotal:   requests,
		RequestDuration: duration,
		RegionRenders:   renders,
		RenderedPoints:  points,
	}
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveRender records one interactive render.
func (m *Metrics) ObserveRender(region string, points int) {
	if m == nil {
		return
	}
	m.RegionRenders.WithLabelValues(region).Inc()
	m.RenderedPoints.Observe(float64(points))
}
