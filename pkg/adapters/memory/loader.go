package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/flowpaths/pkg/domain"
)

// Loader implements ports.GraphLoader and ports.Watchable over an in-memory graph.
type Loader struct {
	mu       sync.RWMutex
	graph    *domain.Graph
	watchers []chan struct{}
}

// NewLoader creates a new MemoryLoader serving the provided graph.
func NewLoader(graph *domain.Graph) *Loader {
	return &Loader{graph: graph}
}

// NewFromStates creates a new MemoryLoader from domain objects.
// States are registered in the given order; parents must precede their children
// for the child lists to be filled in.
func NewFromStates(name string, entries []string, transitions []domain.Transition, states ...domain.State) (*Loader, error) {
	g := domain.NewGraph(name)
	for _, s := range states {
		if err := g.AddState(s); err != nil {
			return nil, fmt.Errorf("failed to add state %s: %w", s.ID, err)
		}
	}
	g.Entries = append(g.Entries, entries...)
	g.Transitions = append(g.Transitions, transitions...)
	return &Loader{graph: g}, nil
}

// Load returns the current graph.
func (l *Loader) Load(ctx context.Context) (*domain.Graph, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.graph == nil {
		return nil, fmt.Errorf("memory loader has no graph")
	}
	return l.graph, nil
}

// Replace swaps the served graph and signals every watcher.
func (l *Loader) Replace(graph *domain.Graph) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.graph = graph

	for _, ch := range l.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Watch returns a channel signaled after each Replace. It is closed when ctx is done.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	l.mu.Lock()
	l.watchers = append(l.watchers, ch)
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, w := range l.watchers {
			if w == ch {
				l.watchers = append(l.watchers[:i], l.watchers[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}
