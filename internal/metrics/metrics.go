package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ecobot"

// Upload outcomes.
const (
	OutcomeSuccess      = "success"
	OutcomeInvalidType  = "invalid_type"
	OutcomeBackendError = "backend_error"
	OutcomeBusy         = "busy"
)

// Metrics holds the application collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	uploads        *prometheus.CounterVec
	detectDuration *prometheus.HistogramVec
	recordsAdded   *prometheus.CounterVec
	mapViews       prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
	)

	m := &Metrics{
		registry: reg,
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Image submissions by outcome.",
		}, []string{"outcome"}),
		detectDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "detect_duration_seconds",
			Help:      "Time spent waiting for the detector.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"mode"}),
		recordsAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_appended_total",
			Help:      "Detection records appended to the store by plastic level.",
		}, []string{"level"}),
		mapViews: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "map_views_active",
			Help:      "Open live global map sessions.",
		}),
	}
	reg.MustRegister(m.uploads, m.detectDuration, m.recordsAdded, m.mapViews)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (m *Metrics) Upload(outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveDetect(mode string, d time.Duration) {
	if m == nil {
		return
	}
	m.detectDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (m *Metrics) RecordAppended(level string) {
	if m == nil {
		return
	}
	m.recordsAdded.WithLabelValues(level).Inc()
}

func (m *Metrics) MapViewOpened() {
	if m == nil {
		return
	}
	m.mapViews.Inc()
}

func (m *Metrics) MapViewClosed() {
	if m == nil {
		return
	}
	m.mapViews.Dec()
}
