package dsl

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/flowpaths/pkg/adapters/memory"
	"github.com/aretw0/flowpaths/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	name        string
	order       []string
	states      map[string]*StateBuilder
	transitions []domain.Transition
	entries     []string
}

// New creates a new graph builder.
func New(name string) *Builder {
	return &Builder{
		name:   name,
		states: make(map[string]*StateBuilder),
	}
}

// Add creates a new state in the graph (atomic by default).
// If the state already exists, it returns the existing builder.
// Scoped IDs ("parent.child") are nested under their parent automatically.
func (b *Builder) Add(id string) *StateBuilder {
	if sb, ok := b.states[id]; ok {
		return sb
	}
	sb := &StateBuilder{
		state:   domain.State{ID: id, Kind: domain.KindAtomic},
		builder: b,
	}
	b.states[id] = sb
	b.order = append(b.order, id)
	return sb
}

// Graph compiles the builder into an immutable domain graph.
func (b *Builder) Graph() (*domain.Graph, error) {
	resolved := make(map[string]domain.State, len(b.order))
	for _, id := range b.order {
		s := b.states[id].state
		if s.Parent == "" {
			if i := strings.LastIndex(id, domain.Separator); i > 0 {
				if _, ok := b.states[id[:i]]; ok {
					s.Parent = id[:i]
				}
			}
		}
		resolved[id] = s
	}

	// Explicit child lists win over the scoped-ID convention.
	for _, id := range b.order {
		for _, child := range b.states[id].state.Children {
			if c, ok := resolved[child]; ok {
				c.Parent = id
				resolved[child] = c
			}
		}
	}

	g := domain.NewGraph(b.name)
	for _, id := range b.order {
		s := resolved[id]
		children := append([]string(nil), s.Children...)
		for _, other := range b.order {
			if resolved[other].Parent == id && !slices.Contains(children, other) {
				children = append(children, other)
			}
		}
		s.Children = children
		if err := g.AddState(s); err != nil {
			return nil, fmt.Errorf("failed to add state %s: %w", id, err)
		}
	}

	g.Transitions = append(g.Transitions, b.transitions...)
	g.Entries = append(g.Entries, b.entries...)
	return g, nil
}

// Build compiles the graph into a MemoryLoader.
func (b *Builder) Build() (*memory.Loader, error) {
	g, err := b.Graph()
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return memory.NewLoader(g), nil
}
