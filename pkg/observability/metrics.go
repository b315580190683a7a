package observability

import (
	"context"
	"time"

	"github.com/aretw0/briefing/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "briefing"

// Metrics exposes Prometheus collectors that report tree activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	taskDuration *prometheus.HistogramVec
	nodeStatus   *prometheus.CounterVec
	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
}

// MustNewMetrics constructs Metrics and registers them with reg.
// Registration errors panic, like the promauto helpers. Collectors that are
// already registered with an identical descriptor are reused.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		taskDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "task",
				Name:      "duration_seconds",
				Help:      "Duration of task executions by outcome.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"task", "outcome"},
		),
		nodeStatus: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "node",
				Name:      "ticks_total",
				Help:      "Node evaluations by node, kind and resulting status.",
			},
			[]string{"node", "kind", "status"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Completed runs by outcome (success or failure stage).",
			},
			[]string{"outcome"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall time of a whole run.",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	m.taskDuration = register(reg, m.taskDuration)
	m.nodeStatus = register(reg, m.nodeStatus)
	m.runs = register(reg, m.runs)
	m.runDuration = register(reg, m.runDuration)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ObserveTask records one task execution.
func (m *Metrics) ObserveTask(task string, success bool, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.taskDuration.WithLabelValues(task, outcome).Observe(d.Seconds())
}

// ObserveNode records the status a node returned.
func (m *Metrics) ObserveNode(node, kind string, status domain.NodeStatus) {
	if m == nil {
		return
	}
	m.nodeStatus.WithLabelValues(node, kind, status.String()).Inc()
}

// ObserveRun records a completed run.
func (m *Metrics) ObserveRun(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(d.Seconds())
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeLeave: func(_ context.Context, e *domain.NodeEvent) {
			m.ObserveNode(e.Node, e.Kind, e.Status)
		},
		OnTaskFinish: func(_ context.Context, e *domain.TaskEvent) {
			m.ObserveTask(e.Task, e.Success, e.Duration)
		},
		OnRunFinish: func(_ context.Context, e *domain.RunEvent) {
			m.ObserveRun(e.Outcome, e.Duration)
		},
	}
}

// RunsCounter returns the run counter for outcome.
func (m *Metrics) RunsCounter(outcome string) prometheus.Counter {
	return m.runs.WithLabelValues(outcome)
}
