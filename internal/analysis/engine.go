package analysis

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/aretw0/flowpaths/pkg/domain"
)

// DefaultMaxAlternatives bounds the number of alternatives a single step may produce.
const DefaultMaxAlternatives = 4096

// Engine is the control-flow path extractor for one immutable graph.
// It holds no per-query state, so a single Engine is safe for concurrent use.
type Engine struct {
	graph           *domain.Graph
	logger          *slog.Logger
	hooks           domain.AnalysisHooks
	dependentLoops  bool
	maxAlternatives int
	switchMode      domain.SwitchMode
	occurrences     domain.OccurrencePolicy
	concurrency     int
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.AnalysisHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLoopDependence toggles loop semantics for states that do not set it themselves.
// Dependent loops carry state across iterations and are wrapped in a Loop element;
// independent ones are modeled as a single representative pass.
func WithLoopDependence(dependent bool) EngineOption {
	return func(e *Engine) {
		e.dependentLoops = dependent
	}
}

// WithMaxAlternatives sets the alternative budget. Zero or negative disables it.
func WithMaxAlternatives(n int) EngineOption {
	return func(e *Engine) {
		e.maxAlternatives = n
	}
}

// WithSwitchMode selects union (default) or embedded switch expansion.
func WithSwitchMode(mode domain.SwitchMode) EngineOption {
	return func(e *Engine) {
		e.switchMode = mode
	}
}

// WithOccurrencePolicy selects which occurrences of a repeated action are extracted.
func WithOccurrencePolicy(p domain.OccurrencePolicy) EngineOption {
	return func(e *Engine) {
		e.occurrences = p
	}
}

// WithConcurrency bounds the number of targets analyzed at once by AnalyzeTargets.
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// NewEngine creates an engine over the given graph.
func NewEngine(graph *domain.Graph, opts ...EngineOption) *Engine {
	e := &Engine{
		graph:           graph,
		logger:          slog.New(slog.NewJSONHandler(io.Discard, nil)),
		dependentLoops:  true,
		maxAlternatives: DefaultMaxAlternatives,
		switchMode:      domain.SwitchUnion,
		occurrences:     domain.FirstOccurrence,
		concurrency:     runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the analyzed graph.
func (e *Engine) Graph() *domain.Graph {
	return e.graph
}

func (e *Engine) budget() budget {
	return budget(e.maxAlternatives)
}

func (e *Engine) isDependent(s *domain.State) bool {
	if s.Dependent != nil {
		return *s.Dependent
	}
	return e.dependentLoops
}

func (e *Engine) stateEvent(typ domain.EventType, id string, kind domain.Kind, n int) *domain.StateEvent {
	return &domain.StateEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      typ,
			Graph:     e.graph.Name,
		},
		StateID:      id,
		Kind:         kind,
		Alternatives: n,
	}
}

func (e *Engine) onExpand(ctx context.Context, s *domain.State, n int) {
	if e.hooks.OnExpand != nil {
		e.hooks.OnExpand(ctx, e.stateEvent(domain.EventExpand, s.ID, s.Kind, n))
	}
}

func (e *Engine) onCycle(ctx context.Context, id string) {
	e.logger.Debug("cycle detected", "state", id)
	if e.hooks.OnCycle != nil {
		e.hooks.OnCycle(ctx, e.stateEvent(domain.EventCycle, id, "", 1))
	}
}

func (e *Engine) onUnknown(ctx context.Context, id string) {
	e.logger.Debug("unknown state reference", "ref", id)
	if e.hooks.OnUnknownReference != nil {
		e.hooks.OnUnknownReference(ctx, e.stateEvent(domain.EventUnknownReference, id, "", 1))
	}
}

func (e *Engine) onExplosion(ctx context.Context, err *domain.PathExplosionError) {
	e.logger.Warn("path explosion", "state", err.StateID, "count", err.Count, "limit", err.Limit)
	if e.hooks.OnPathExplosion != nil {
		e.hooks.OnPathExplosion(ctx, e.stateEvent(domain.EventPathExplosion, err.StateID, "", err.Count))
	}
}

func (e *Engine) onTargetDone(ctx context.Context, target string, paths int, started time.Time, err error) {
	if e.hooks.OnTargetDone == nil {
		return
	}
	e.hooks.OnTargetDone(ctx, &domain.TargetEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      domain.EventTargetDone,
			Graph:     e.graph.Name,
		},
		Target:   target,
		Paths:    paths,
		Duration: time.Since(started),
		Err:      err,
	})
}
