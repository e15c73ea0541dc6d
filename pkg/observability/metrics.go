package observability

import (
	"context"

	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "actionchain"

// Outcome labels of actionchain_runs_total.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// Metrics records chain runs as Prometheus metrics.
type Metrics struct {
	runs     *prometheus.CounterVec
	steps    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	modified prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of chain runs by outcome",
			},
			[]string{"outcome"},
		),
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "steps_total",
				Help:      "Total number of chain steps by action and status",
			},
			[]string{"action", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of chain runs",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"chain"},
		),
		modified: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "modified_runs_total",
				Help:      "Total number of successful chain runs that modified data",
			},
		),
	}
	reg.MustRegister(m.runs, m.steps, m.duration, m.modified)
	return m
}

// Hooks returns the chain hooks feeding the collectors.
func (m *Metrics) Hooks() domain.ChainHooks {
	return domain.ChainHooks{
		OnStepSkip:      m.onStep,
		OnStepFinish:    m.onStep,
		OnChainComplete: m.onComplete,
	}
}

func (m *Metrics) onStep(_ context.Context, e *domain.StepEvent) {
	m.steps.WithLabelValues(e.Action, string(e.Status)).Inc()
}

func (m *Metrics) onComplete(_ context.Context, e *domain.ChainEvent) {
	m.duration.WithLabelValues(e.Chain).Observe(e.Duration.Seconds())

	if !e.Succeeded() {
		m.runs.WithLabelValues(OutcomeFailed).Inc()
		return
	}
	m.runs.WithLabelValues(OutcomeSucceeded).Inc()
	if e.Outcome != nil && e.Outcome.Result != nil && e.Outcome.Result.Modified {
		m.modified.Inc()
	}
}
