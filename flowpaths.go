package flowpaths

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/flowpaths/internal/analysis"
	"github.com/aretw0/flowpaths/pkg/adapters/hcl"
	loamAdapter "github.com/aretw0/flowpaths/pkg/adapters/loam"
	"github.com/aretw0/flowpaths/pkg/adapters/plantuml"
	"github.com/aretw0/flowpaths/pkg/adapters/workflow"
	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/aretw0/flowpaths/pkg/ports"
	"github.com/aretw0/loam"
)

// ErrNotWatchable is returned by Watch when the loader cannot signal changes.
var ErrNotWatchable = errors.New("current loader does not support watching")

// Extractor is the high-level entry point for the flowpaths library.
// It owns a loader, the engine built over the loaded graph and the optional
// persistence adapters used by Export.
type Extractor struct {
	loader    ports.GraphLoader
	store     ports.ResultStore
	publisher ports.ResultPublisher
	locker    ports.DistributedLocker
	lockTTL   time.Duration

	engineOpts []analysis.EngineOption
	hooks      domain.AnalysisHooks
	logger     *slog.Logger

	mu     sync.RWMutex
	name   string
	engine *analysis.Engine
}

var _ ports.Analyzer = (*Extractor)(nil)

// Option defines a functional option for configuring the Extractor.
type Option func(*Extractor)

// WithLoader injects a custom GraphLoader, bypassing the loader picked from the path.
func WithLoader(l ports.GraphLoader) Option {
	return func(x *Extractor) {
		x.loader = l
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(x *Extractor) {
		x.logger = logger
	}
}

// WithHooks registers analysis hooks (see pkg/observability for ready-made ones).
func WithHooks(hooks domain.AnalysisHooks) Option {
	return func(x *Extractor) {
		x.hooks = hooks
	}
}

// WithLoopDependence sets the default loop semantics (dependent when true).
func WithLoopDependence(dependent bool) Option {
	return func(x *Extractor) {
		x.engineOpts = append(x.engineOpts, analysis.WithLoopDependence(dependent))
	}
}

// WithMaxAlternatives bounds the alternatives produced by a single step. Zero disables the budget.
func WithMaxAlternatives(n int) Option {
	return func(x *Extractor) {
		x.engineOpts = append(x.engineOpts, analysis.WithMaxAlternatives(n))
	}
}

// WithSwitchMode selects union or embedded switch expansion.
func WithSwitchMode(mode domain.SwitchMode) Option {
	return func(x *Extractor) {
		x.engineOpts = append(x.engineOpts, analysis.WithSwitchMode(mode))
	}
}

// WithOccurrencePolicy selects which occurrences of a repeated action are extracted.
func WithOccurrencePolicy(p domain.OccurrencePolicy) Option {
	return func(x *Extractor) {
		x.engineOpts = append(x.engineOpts, analysis.WithOccurrencePolicy(p))
	}
}

// WithConcurrency bounds the targets analyzed at once.
func WithConcurrency(n int) Option {
	return func(x *Extractor) {
		x.engineOpts = append(x.engineOpts, analysis.WithConcurrency(n))
	}
}

// WithStore persists the results of Export.
func WithStore(s ports.ResultStore) Option {
	return func(x *Extractor) {
		x.store = s
	}
}

// WithPublisher broadcasts the results of Export.
func WithPublisher(p ports.ResultPublisher) Option {
	return func(x *Extractor) {
		x.publisher = p
	}
}

// WithLocker serializes Export per workflow across replicas.
func WithLocker(l ports.DistributedLocker, ttl time.Duration) Option {
	return func(x *Extractor) {
		x.locker = l
		x.lockTTL = ttl
	}
}

// New loads the workflow at path and builds the extractor.
// The loader is picked from the path (see OpenLoader) unless WithLoader is given,
// in which case path may be empty.
func New(ctx context.Context, path string, opts ...Option) (*Extractor, error) {
	x := &Extractor{lockTTL: time.Minute}
	for _, opt := range opts {
		opt(x)
	}

	if x.loader == nil {
		if path == "" {
			return nil, fmt.Errorf("path is required when no custom loader is provided")
		}
		loader, err := OpenLoader(path)
		if err != nil {
			return nil, err
		}
		x.loader = loader
	}

	if x.logger == nil {
		x.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	if err := x.Reload(ctx); err != nil {
		return nil, err
	}
	return x, nil
}

// OpenLoader picks a GraphLoader for path:
// a directory is read as a Loam repository (one document per state),
// .hcl files with the HCL loader, .puml/.plantuml files as diagram text,
// and anything else as a YAML/JSON workflow document.
func OpenLoader(path string) (ports.GraphLoader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workflow: %w", err)
	}

	if info.IsDir() {
		// The extractor never writes to the repository.
		repo, err := loam.Init(absPath,
			loam.WithStrict(true),
			loam.WithReadOnly(true),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize loam: %w", err)
		}
		typedRepo := loam.NewTypedRepository[loamAdapter.StateMetadata](repo)
		return loamAdapter.New(typedRepo, loamAdapter.WithName(filepath.Base(absPath))), nil
	}

	switch strings.ToLower(filepath.Ext(absPath)) {
	case ".hcl":
		return hcl.New(absPath), nil
	case ".puml", ".plantuml", ".pu":
		return plantuml.New(absPath), nil
	}
	return workflow.New(absPath), nil
}

// Reload loads the graph again and swaps the engine.
// Queries already running keep the engine they started with.
func (x *Extractor) Reload(ctx context.Context) error {
	g, err := x.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}

	name := x.Name()
	if g.Name != "" {
		name = g.Name
	}
	logger := x.logger
	if name != "" {
		logger = logger.With("graph", name)
	}

	opts := []analysis.EngineOption{
		analysis.WithLogger(logger),
		analysis.WithHooks(x.hooks),
	}
	opts = append(opts, x.engineOpts...)
	engine := analysis.NewEngine(g, opts...)

	x.mu.Lock()
	x.name = name
	x.engine = engine
	x.mu.Unlock()

	logger.Debug("graph loaded", "states", len(g.Order), "entries", len(g.RootScope().Initial))
	return nil
}

func (x *Extractor) current() *analysis.Engine {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.engine
}

// Name returns the workflow name of the last successful load. A graph without
// a name keeps the previous one.
func (x *Extractor) Name() string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.name
}

// Graph returns the currently loaded graph.
func (x *Extractor) Graph() *domain.Graph {
	return x.current().Graph()
}

// FullPaths expands every entry state into its complete path alternatives.
func (x *Extractor) FullPaths(ctx context.Context) ([]domain.Element, error) {
	return x.current().FullPaths(ctx)
}

// Locate returns the routes from the entries down to target.
func (x *Extractor) Locate(target string) ([]domain.Route, error) {
	return x.current().Locate(target)
}

// PathsTo returns every path that ends exactly at target.
func (x *Extractor) PathsTo(ctx context.Context, target string) ([]domain.Element, error) {
	return x.current().PathsTo(ctx, target)
}

// Extract computes inbound and outbound paths for every action.
func (x *Extractor) Extract(ctx context.Context) (*domain.Extraction, error) {
	return x.current().Extract(ctx)
}

// AnalyzeTargets runs PathsTo for many targets concurrently. Nil means every atomic state.
func (x *Extractor) AnalyzeTargets(ctx context.Context, targets []string) ([]domain.TargetReport, error) {
	return x.current().AnalyzeTargets(ctx, targets)
}

// Store returns the configured result store, or nil.
func (x *Extractor) Store() ports.ResultStore {
	return x.store
}

// Export extracts, then saves and publishes the result when a store or
// publisher is configured. With a locker, concurrent exports of the same
// workflow run one at a time.
func (x *Extractor) Export(ctx context.Context) (*domain.Extraction, error) {
	if x.locker != nil {
		name := x.Name()
		unlock, err := x.locker.Lock(ctx, name, x.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to lock workflow %s: %w", name, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				x.logger.Warn("failed to release lock", "workflow", name, "err", err)
			}
		}()
	}

	ext, err := x.Extract(ctx)
	if err != nil {
		return nil, err
	}

	if x.store != nil {
		if err := x.store.Save(ctx, ext); err != nil {
			return nil, fmt.Errorf("failed to save extraction: %w", err)
		}
	}
	if x.publisher != nil {
		if err := x.publisher.Publish(ctx, ext); err != nil {
			return nil, fmt.Errorf("failed to publish extraction: %w", err)
		}
	}

	x.logger.Info("extraction exported",
		"workflow", ext.Workflow,
		"actions", len(ext.Actions),
		"failures", len(ext.Failures),
	)
	return ext, nil
}

// Watch reloads the graph whenever the loader signals a change and forwards
// one signal per successful reload. Failed reloads are logged and the previous
// graph stays active.
func (x *Extractor) Watch(ctx context.Context) (<-chan struct{}, error) {
	w, ok := x.loader.(ports.Watchable)
	if !ok {
		return nil, ErrNotWatchable
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				if err := x.Reload(ctx); err != nil {
					x.logger.Error("reload failed", "err", err)
					continue
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}

// Loader returns the underlying GraphLoader.
func (x *Extractor) Loader() ports.GraphLoader {
	return x.loader
}
