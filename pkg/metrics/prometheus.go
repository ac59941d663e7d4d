package metrics

import (
	"SignalDesk/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	analyses      *prometheus.CounterVec
	analysisTime  prometheus.Histogram
	transitions   *prometheus.CounterVec
	activeSignals prometheus.Gauge
	errorsTotal   *prometheus.CounterVec
}

// New creates a Prometheus metrics recorder registered on reg.
// A nil reg registers on the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		analyses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_analyses_total",
				Help: "Total number of analysis runs by result",
			},
			[]string{"result"},
		),
		analysisTime: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "signaldesk_analysis_duration_seconds",
				Help:    "Duration of analysis runs in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		transitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_signal_transitions_total",
				Help: "Signal status transitions by target status",
			},
			[]string{"to"},
		),
		activeSignals: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "signaldesk_active_signals",
				Help: "Signals currently in the active state",
			},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordAnalysis records a finished analysis run.
func (r *Recorder) RecordAnalysis(result string, seconds float64) {
	r.analyses.WithLabelValues(result).Inc()
	r.analysisTime.Observe(seconds)
}

// RecordTransition records a signal entering status to.
func (r *Recorder) RecordTransition(to models.Status) {
	r.transitions.WithLabelValues(string(to)).Inc()
}

// RecordActiveSignals sets the active signal gauge.
func (r *Recorder) RecordActiveSignals(n int) {
	r.activeSignals.Set(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// Noop discards all metrics.
type Noop struct{}

func (Noop) RecordAnalysis(string, float64) {}
func (Noop) RecordTransition(models.Status) {}
func (Noop) RecordActiveSignals(int) {}
func (Noop) RecordError(string) {}
