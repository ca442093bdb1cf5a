package loader

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for dataset loading.
type Metrics struct {
	LoadsTotal   *prometheus.CounterVec
	LoadDuration prometheus.Histogram
	Rows         prometheus.Gauge
	ErrorsTotal  *prometheus.CounterVec
}

// NewMetrics constructs the loader collectors and registers them on registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	loads := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_loads_total",
			Help: "Dataset load attempts by source kind and result.",
		},
		[]string{"source", "result"},
	)
	loadDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dataset_load_duration_seconds",
			Help:    "Time spent fetching and decoding the dataset.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)
	rows := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataset_rows",
			Help: "Number of listings in the loaded table.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_errors_total",
			Help: "Dataset load failures by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(loads, loadDuration, rows, errorsTotal)

	return &Metrics{
		LoadsTotal:   loads,
		LoadDuration: loadDuration,
		Rows:         rows,
		ErrorsTotal:  errorsTotal,
	}
}

// ObserveLoad records a successful load.
func (m *Metrics) ObserveLoad(source SourceKind, d time.Duration, rows int) {
	if m == nil {
		return
	}
	m.LoadsTotal.WithLabelValues(string(source), "ok").Inc()
	m.LoadDuration.Observe(d.Seconds())
	m.Rows.Set(float64(rows))
}

// IncError records a failed load.
func (m *Metrics) IncError(source SourceKind, errorType string) {
	if m == nil {
		return
	}
	m.LoadsTotal.WithLabelValues(string(source), "error").Inc()
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
