package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Invocation outcomes recorded in Metrics.Invocations.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeNoCommand = "no_command"
)

// Metrics holds the Prometheus counters, histograms, and gauges for a MODE run.
type Metrics struct {
	Invocations       *prometheus.CounterVec // labels: outcome={success,failure,no_command}
	MissingInputs     *prometheus.CounterVec // labels: side={FCST,OBS}
	ThresholdErrors   prometheus.Counter
	FieldsProcessed   prometheus.Counter
	RunRunning        prometheus.Gauge
	InvocationSeconds prometheus.Histogram
}

// NewMetrics creates and registers all run metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Invocations,
		m.MissingInputs,
		m.ThresholdErrors,
		m.FieldsProcessed,
		m.RunRunning,
		m.InvocationSeconds,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mode_driver",
			Name:      "invocations_total",
			Help:      "MODE invocations by outcome.",
		}, []string{"outcome"}),
		MissingInputs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mode_driver",
			Name:      "missing_inputs_total",
			Help:      "Time steps skipped because an input file was not found, by side.",
		}, []string{"side"}),
		ThresholdErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mode_driver",
			Name:      "threshold_errors_total",
			Help:      "Variables skipped because a probabilistic forecast had no threshold.",
		}),
		FieldsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mode_driver",
			Name:      "fields_processed_total",
			Help:      "Variable and time step combinations processed.",
		}),
		RunRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mode_driver",
			Name:      "run_running",
			Help:      "1 while a run is in progress, 0 otherwise.",
		}),
		InvocationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mode_driver",
			Name:      "invocation_duration_seconds",
			Help:      "Duration of a single MODE invocation.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}),
	}
}
