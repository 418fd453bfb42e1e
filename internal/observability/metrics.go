package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// risk-evaluation core.
type Metrics struct {
	Evaluations        prometheus.Counter
	EvaluationDuration prometheus.Histogram
	VerdictsByLevel    *prometheus.CounterVec // labels: level={SAFE,MODERATE,HIGH,CRITICAL}
	Overrides          *prometheus.CounterVec // labels: source={drill,sensor_grid,citizen_network,protocol}
	SignalFailures     *prometheus.CounterVec // labels: adapter={telemetry,crowd}

	// Workflow metrics.
	ProposalsSubmitted prometheus.Counter
	ProposalsDeduped   prometheus.Counter
	Decisions          *prometheus.CounterVec // labels: outcome={approved,rejected,not_found,invalid}
	PendingProposals   prometheus.Gauge

	DegradedModel prometheus.Gauge
	DrillActive   prometheus.Gauge
}

// NewMetrics creates and registers all core metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Evaluations,
		m.EvaluationDuration,
		m.VerdictsByLevel,
		m.Overrides,
		m.SignalFailures,
		m.ProposalsSubmitted,
		m.ProposalsDeduped,
		m.Decisions,
		m.PendingProposals,
		m.DegradedModel,
		m.DrillActive,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_sentinel",
			Name:      "evaluations_total",
			Help:      "Total risk evaluations performed.",
		}),
		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hazard_sentinel",
			Name:      "evaluation_duration_seconds",
			Help:      "Duration of one predict-govern-fuse evaluation.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		VerdictsByLevel: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_sentinel",
			Name:      "verdicts_total",
			Help:      "Verdicts issued by risk level.",
		}, []string{"level"}),
		Overrides: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_sentinel",
			Name:      "overrides_total",
			Help:      "Override firings by deciding source.",
		}, []string{"source"}),
		SignalFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_sentinel",
			Name:      "signal_failures_total",
			Help:      "Signal adapters that failed to resolve during an evaluation.",
		}, []string{"adapter"}),
		ProposalsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_sentinel",
			Name:      "proposals_submitted_total",
			Help:      "Proposals entered into the approval queue.",
		}),
		ProposalsDeduped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_sentinel",
			Name:      "proposals_deduped_total",
			Help:      "Proposals suppressed because an identical trigger was already pending.",
		}),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_sentinel",
			Name:      "decisions_total",
			Help:      "Authority decisions by outcome.",
		}, []string{"outcome"}),
		PendingProposals: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hazard_sentinel",
			Name:      "pending_proposals",
			Help:      "Proposals currently awaiting a decision.",
		}),
		DegradedModel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hazard_sentinel",
			Name:      "degraded_model",
			Help:      "1 when the terrain predictor runs the heuristic fallback.",
		}),
		DrillActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hazard_sentinel",
			Name:      "drill_active",
			Help:      "1 while a simulation scenario is forcing verdicts.",
		}),
	}
}
