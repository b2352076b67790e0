package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkflowMetrics counts orchestrator runs and their duration. All methods are
// nil-safe so tests can pass a nil receiver.
type WorkflowMetrics struct {
	runsTotal   *prometheus.CounterVec
	runDuration prometheus.Histogram
	stepsTotal  *prometheus.CounterVec
}

func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	factory := promauto.With(reg)
	return &WorkflowMetrics{
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "declaration_workflow_runs_total",
			Help: "Workflow runs by terminal outcome.",
		}, []string{"outcome"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "declaration_workflow_run_duration_seconds",
			Help: "Wall-clock duration of one workflow run.",
			// Runs block on a 3-5 minute remote call; bucket accordingly.
			Buckets: []float64{1, 5, 15, 60, 120, 300, 600, 900},
		}),
		stepsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "declaration_workflow_steps_total",
			Help: "Ledger steps recorded, by step name and status.",
		}, []string{"step", "status"}),
	}
}

func (m *WorkflowMetrics) ObserveRun(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(duration.Seconds())
}

func (m *WorkflowMetrics) ObserveStep(step, status string) {
	if m == nil {
		return
	}
	m.stepsTotal.WithLabelValues(step, status).Inc()
}
