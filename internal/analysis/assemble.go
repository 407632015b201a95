package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aretw0/flowpaths/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// Locate returns every route from a declared entry down to target.
func (e *Engine) Locate(target string) ([]domain.Route, error) {
	id, ok := e.graph.Resolve(target)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTargetNotFound, target)
	}
	return e.locate(e.graph.RootScope(), id, nil), nil
}

// PathsTo builds every complete path that ends exactly at target.
func (e *Engine) PathsTo(ctx context.Context, target string) ([]domain.Element, error) {
	started := time.Now()
	paths, _, err := e.pathsTo(ctx, target)
	e.onTargetDone(ctx, target, len(paths), started, err)
	return paths, err
}

func (e *Engine) pathsTo(ctx context.Context, target string) ([]domain.Element, []domain.Route, error) {
	routes, err := e.Locate(target)
	if err != nil {
		return nil, nil, err
	}

	x := e.newExpander(ctx)
	var out []domain.Element
	for _, r := range routes {
		paths, err := x.assemble(r)
		if err != nil {
			return nil, routes, e.observe(ctx, err)
		}
		if out, err = union(x.b, r.Target, out, paths); err != nil {
			return nil, routes, e.observe(ctx, err)
		}
	}
	return out, routes, nil
}

// assemble expands the states of a route hop by hop. Chain states are expanded
// without their successors (the route itself supplies what comes next) and the
// route ends with the bare target. When the route descends into a dependent
// loop, a second variant runs one full pass of that loop first.
func (x *expander) assemble(r domain.Route) ([]domain.Element, error) {
	partials := [][]domain.Element{{}}
	last := len(r.Hops) - 1

	for i, hop := range r.Hops {
		if len(hop.Chain) == 0 {
			continue
		}
		end := len(hop.Chain) - 1
		steps := hop.Chain[:end]
		if i == last {
			steps = hop.Chain
		}

		for _, id := range steps {
			alts, err := x.expand(id, nil, false)
			if err != nil {
				return nil, err
			}
			if err := x.b.check(id, len(partials)*len(alts)); err != nil {
				return nil, err
			}
			partials = extend(partials, alts)
		}

		if i == last {
			break
		}

		container := hop.Chain[end]
		s, ok := x.eng.graph.State(container)
		if !ok || s.Kind != domain.KindLoop || !x.eng.isDependent(s) {
			continue
		}
		full, err := x.loop(s, (*trail)(nil).push(container), 1)
		if err != nil {
			return nil, err
		}
		if err := x.b.check(container, len(partials)*(len(full)+1)); err != nil {
			return nil, err
		}
		partials = append(partials, extend(partials, full)...)
	}

	out := make([]domain.Element, 0, len(partials))
	for _, p := range partials {
		out = append(out, domain.NewSequence(p, false))
	}
	return out, nil
}

// FullPaths expands every entry state unconstrained. Each alternative is
// wrapped in a top-level Sequence.
func (e *Engine) FullPaths(ctx context.Context) ([]domain.Element, error) {
	x := e.newExpander(ctx)
	var out []domain.Element
	for _, entry := range e.graph.RootScope().Initial {
		paths, err := x.entry(entry)
		if err != nil {
			return nil, e.observe(ctx, err)
		}
		out = append(out, paths...)
	}
	return out, nil
}

func (x *expander) entry(id string) ([]domain.Element, error) {
	alts, err := x.expand(id, nil, true)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Element, len(alts))
	for i, a := range alts {
		out[i] = domain.NewSequence([]domain.Element{a}, false)
	}
	return out, nil
}

// Extract derives, for every action of every full path, its inbound and outbound
// paths. A failing entry is recorded in the extraction and the others continue.
func (e *Engine) Extract(ctx context.Context) (*domain.Extraction, error) {
	ext := domain.NewExtraction(e.graph.Name)
	x := e.newExpander(ctx)

	for _, entry := range e.graph.RootScope().Initial {
		paths, err := x.entry(entry)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			e.logger.Warn("entry expansion failed", "entry", entry, "err", e.observe(ctx, err))
			ext.Fail(entry, err)
			continue
		}
		for _, p := range paths {
			e.extractPath(ext, p)
		}
	}

	e.logger.Debug("extraction complete", "actions", len(ext.Actions), "failures", len(ext.Failures))
	return ext, nil
}

func (e *Engine) extractPath(ext *domain.Extraction, path domain.Element) {
	keys := domain.Keys(path)
	sort.Strings(keys)

	for _, key := range keys {
		n := 1
		if e.occurrences == domain.AllOccurrences {
			n = Occurrences(path, key)
		}
		for i := 0; i < n; i++ {
			in, ok := PruneToOccurrence(path, key, i)
			if !ok {
				continue
			}
			out, _ := PruneAfterOccurrence(path, key, i)
			ext.Add(key, domain.NewSequence(in, false), domain.NewSequence(out, false))
		}
	}
}

// AnalyzeTargets runs PathsTo for each target concurrently. An empty target list
// means every atomic state. Per-target failures are reported in their report and
// never cancel the other targets.
func (e *Engine) AnalyzeTargets(ctx context.Context, targets []string) ([]domain.TargetReport, error) {
	if len(targets) == 0 {
		targets = e.graph.Atomics()
	}

	reports := make([]domain.TargetReport, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}

	for i, target := range targets {
		g.Go(func() error {
			started := time.Now()
			paths, routes, err := e.pathsTo(gctx, target)
			e.onTargetDone(gctx, target, len(paths), started, err)
			reports[i] = domain.TargetReport{Target: target, Routes: routes, Paths: paths, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, ctx.Err()
}

// observe reports budget failures to the hooks and returns err unchanged.
func (e *Engine) observe(ctx context.Context, err error) error {
	var pe *domain.PathExplosionError
	if errors.As(err, &pe) {
		e.onExplosion(ctx, pe)
	}
	return err
}
