// Package loam loads state graphs from a Loam repository, one document per state.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/flowpaths/pkg/adapters/workflow"
	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/aretw0/flowpaths/pkg/dsl"
	"github.com/aretw0/loam"
	"github.com/mitchellh/mapstructure"
)

// Loader adapts a Loam document repository to the GraphLoader interface.
// Each document describes one state; directories map onto scopes, so
// "checkout/charge.md" is the state "checkout.charge" nested under "checkout".
type Loader struct {
	Repo *loam.TypedRepository[StateMetadata]
	name string
}

// Option configures the Loader.
type Option func(*Loader)

// WithName names the loaded graph. Defaults to "workflow".
func WithName(name string) Option {
	return func(l *Loader) {
		l.name = name
	}
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[StateMetadata], opts ...Option) *Loader {
	l := &Loader{
		Repo: repo,
		name: "workflow",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type entry struct {
	id   string
	path string
	meta StateMetadata
}

// Load lists every document of the repository and builds the graph.
func (l *Loader) Load(ctx context.Context) (*domain.Graph, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string, len(docs))
	entries := make([]entry, 0, len(docs))
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := stateID(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: collision detected: ID '%s' is defined in both '%s' and '%s'", domain.ErrDuplicateState, id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		entries = append(entries, entry{id: id, path: doc.ID, meta: doc.Data})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	b := dsl.New(l.name)
	for _, e := range entries {
		if err := l.apply(b, e, seen); err != nil {
			return nil, err
		}
	}
	return b.Graph()
}

func (l *Loader) apply(b *dsl.Builder, e entry, declared map[string]string) error {
	var values []string
	if e.meta.Value != nil {
		if err := mapstructure.WeakDecode(e.meta.Value, &values); err != nil {
			return fmt.Errorf("state %s (%s): invalid value: %w", e.id, e.path, err)
		}
	}

	scope := parentScope(e.id, e.meta.Parent, declared)
	resolve := func(ref string) string {
		ref = stateID(ref)
		if scope != "" {
			if id := domain.JoinID(scope, ref); declared[id] != "" {
				return id
			}
		}
		return ref
	}
	resolveChild := func(ref string) string {
		if id := domain.JoinID(e.id, stateID(ref)); declared[id] != "" {
			return id
		}
		return resolve(ref)
	}

	sb := b.Add(e.id)
	if e.meta.Parent != "" {
		sb.In(scope)
	}

	kind, action := workflow.KindOf(e.meta.Type)
	if e.meta.Type == "" {
		kind = domain.KindAtomic
	}
	switch kind {
	case domain.KindAtomic:
		value := ""
		if len(values) > 0 {
			value = values[0]
		}
		sb.Action(action, value)
	default:
		sb.Kind(kind)
		children := make([]string, 0, len(values)+len(e.meta.Children))
		for _, ref := range append(values, e.meta.Children...) {
			children = append(children, resolveChild(ref))
		}
		switch kind {
		case domain.KindSequence:
			sb.Sequence(children...)
		case domain.KindParallel:
			sb.Parallel(children...)
		case domain.KindSwitch:
			sb.Switch(children...)
		case domain.KindLoop:
			sb.Loop(children...)
		}
	}

	for _, ref := range e.meta.Initial {
		sb.Initial(resolveChild(ref))
	}
	if e.meta.Dependent != nil {
		sb.Dependent(*e.meta.Dependent)
	}
	if e.meta.Entry {
		sb.Entry()
	}
	if e.meta.To != "" {
		sb.Go(resolve(e.meta.To))
	}
	for _, t := range e.meta.Transitions {
		if t.To == "" {
			return fmt.Errorf("state %s (%s): transition without target", e.id, e.path)
		}
		sb.On(t.Label, resolve(t.To))
	}
	return nil
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				// Coalesce bursts: one pending signal is enough to trigger a reload.
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ch, nil
}

var documentExtensions = []string{".md", ".json", ".yaml", ".yml"}

// stateID turns a document path or reference into a state ID.
func stateID(raw string) string {
	id := filepath.ToSlash(raw)
	for _, ext := range documentExtensions {
		if strings.HasSuffix(id, ext) {
			id = strings.TrimSuffix(id, ext)
			break
		}
	}
	return strings.ReplaceAll(id, "/", domain.Separator)
}

// parentScope returns the scope the state's references resolve against.
func parentScope(id, explicit string, declared map[string]string) string {
	if explicit != "" {
		return stateID(explicit)
	}
	if i := strings.LastIndex(id, domain.Separator); i > 0 && declared[id[:i]] != "" {
		return id[:i]
	}
	return ""
}
