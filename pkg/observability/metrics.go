package observability

import (
	"context"

	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors fed by the analysis hooks.
type Metrics struct {
	Expansions         *prometheus.CounterVec
	Cycles             prometheus.Counter
	UnknownReferences  prometheus.Counter
	PathExplosions     prometheus.Counter
	TargetDuration     *prometheus.HistogramVec
	TargetAlternatives prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg (skipped when reg is nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Expansions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowpaths_state_expansions_total",
				Help: "Total number of states expanded, by kind",
			},
			[]string{"kind"},
		),
		Cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flowpaths_cycles_total",
			Help: "Transitions cut because they closed a cycle",
		}),
		UnknownReferences: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flowpaths_unknown_references_total",
			Help: "References to states missing from the graph",
		}),
		PathExplosions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flowpaths_path_explosions_total",
			Help: "Expansions aborted by the alternative budget",
		}),
		TargetDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "flowpaths_target_duration_seconds",
				Help: "Duration of per-target path queries",
			},
			[]string{"status"},
		),
		TargetAlternatives: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "flowpaths_target_paths",
			Help:    "Number of paths found per target",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.Expansions,
			m.Cycles,
			m.UnknownReferences,
			m.PathExplosions,
			m.TargetDuration,
			m.TargetAlternatives,
		)
	}
	return m
}

// Hooks returns analysis hooks that record into m.
func (m *Metrics) Hooks() domain.AnalysisHooks {
	return domain.AnalysisHooks{
		OnExpand: func(_ context.Context, e *domain.StateEvent) {
			m.Expansions.WithLabelValues(string(e.Kind)).Inc()
		},
		OnCycle: func(context.Context, *domain.StateEvent) {
			m.Cycles.Inc()
		},
		OnUnknownReference: func(context.Context, *domain.StateEvent) {
			m.UnknownReferences.Inc()
		},
		OnPathExplosion: func(context.Context, *domain.StateEvent) {
			m.PathExplosions.Inc()
		},
		OnTargetDone: func(_ context.Context, e *domain.TargetEvent) {
			status := "ok"
			if e.Err != nil {
				status = "error"
			}
			m.TargetDuration.WithLabelValues(status).Observe(e.Duration.Seconds())
			if e.Err == nil {
				m.TargetAlternatives.Observe(float64(e.Paths))
			}
		},
	}
}
