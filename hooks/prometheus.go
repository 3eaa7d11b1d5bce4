package hooks

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Skryldev/image-compressor/core"
)

// PrometheusMetrics is a core.MetricsCollector backed by Prometheus
// collectors.  Safe for concurrent use.
type PrometheusMetrics struct {
	stageDuration *prometheus.HistogramVec
	errorsTotal   *prometheus.CounterVec
	compressions  *prometheus.CounterVec
	inputBytes    *prometheus.CounterVec
	outputBytes   *prometheus.CounterVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
// Registration panics on duplicate names, like prometheus.MustRegister.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "imagecompressor_stage_duration_seconds",
			Help:    "Duration of each pipeline stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "imagecompressor_errors_total",
			Help: "Failed compressions by stage and error kind.",
		}, []string{"stage", "kind"}),
		compressions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "imagecompressor_compressions_total",
			Help: "Successful compressions by format.",
		}, []string{"format"}),
		inputBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "imagecompressor_input_bytes_total",
			Help: "Bytes received by successful compressions.",
		}, []string{"format"}),
		outputBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "imagecompressor_output_bytes_total",
			Help: "Bytes produced by successful compressions.",
		}, []string{"format"}),
	}

	reg.MustRegister(
		m.stageDuration,
		m.errorsTotal,
		m.compressions,
		m.inputBytes,
		m.outputBytes,
	)
	return m
}

func (m *PrometheusMetrics) RecordStageTime(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *PrometheusMetrics) RecordCompression(format core.Format, inputBytes, outputBytes int64) {
	f := string(format)
	m.compressions.WithLabelValues(f).Inc()
	m.inputBytes.WithLabelValues(f).Add(float64(inputBytes))
	m.outputBytes.WithLabelValues(f).Add(float64(outputBytes))
}

func (m *PrometheusMetrics) RecordError(stage string, kind string) {
	m.errorsTotal.WithLabelValues(stage, kind).Inc()
}
