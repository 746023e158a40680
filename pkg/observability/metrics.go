// Package observability wires Prometheus instrumentation for the
// editing pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HistoryMetrics counts edit-history activity. A nil receiver is a
// no-op so callers can run uninstrumented.
type HistoryMetrics struct {
	executed        *prometheus.CounterVec
	merged          prometheus.Counter
	undone          prometheus.Counter
	redone          prometheus.Counter
	persistFailures prometheus.Counter
	stackDepth      *prometheus.GaugeVec
}

// NewHistoryMetrics registers the history collectors on the given
// registerer.
func NewHistoryMetrics(reg prometheus.Registerer) *HistoryMetrics {
	factory := promauto.With(reg)
	return &HistoryMetrics{
		executed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "researchflow",
			Subsystem: "history",
			Name:      "commands_executed_total",
			Help:      "Commands executed, by command type.",
		}, []string{"type"}),
		merged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "researchflow",
			Subsystem: "history",
			Name:      "commands_merged_total",
			Help:      "Commands absorbed into the previous stack entry.",
		}),
		undone: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "researchflow",
			Subsystem: "history",
			Name:      "undo_total",
			Help:      "Undo operations performed.",
		}),
		redone: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "researchflow",
			Subsystem: "history",
			Name:      "redo_total",
			Help:      "Redo operations performed.",
		}),
		persistFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "researchflow",
			Subsystem: "history",
			Name:      "persist_failures_total",
			Help:      "History persistence attempts that failed.",
		}),
		stackDepth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "researchflow",
			Subsystem: "history",
			Name:      "stack_depth",
			Help:      "Current depth of the undo and redo stacks.",
		}, []string{"stack"}),
	}
}

func (m *HistoryMetrics) Executed(kind string) {
	if m == nil {
		return
	}
	m.executed.WithLabelValues(kind).Inc()
}

func (m *HistoryMetrics) Merged() {
	if m == nil {
		return
	}
	m.merged.Inc()
}

func (m *HistoryMetrics) Undone() {
	if m == nil {
		return
	}
	m.undone.Inc()
}

func (m *HistoryMetrics) Redone() {
	if m == nil {
		return
	}
	m.redone.Inc()
}

func (m *HistoryMetrics) PersistFailed() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

func (m *HistoryMetrics) SetDepths(undo, redo int) {
	if m == nil {
		return
	}
	m.stackDepth.WithLabelValues("undo").Set(float64(undo))
	m.stackDepth.WithLabelValues("redo").Set(float64(redo))
}
