package domain

import (
	"fmt"
	"slices"
)

// Graph is the normalized state graph of one workflow.
// States are addressed by ID in a flat arena so cyclic transitions need no back-references.
// A Graph is built once by a loader and must not be mutated afterwards.
type Graph struct {
	Name        string            `json:"name,omitempty" yaml:"name,omitempty"`
	States      map[string]*State `json:"states" yaml:"states"`
	Order       []string          `json:"order" yaml:"order"`
	Entries     []string          `json:"entries" yaml:"entries"`
	Transitions []Transition      `json:"transitions,omitempty" yaml:"transitions,omitempty"`
}

// NewGraph creates an empty graph.
func NewGraph(name string) *Graph {
	return &Graph{
		Name:   name,
		States: make(map[string]*State),
	}
}

// AddState registers a state in the arena.
// When the parent is already registered, the state is appended to its children.
func (g *Graph) AddState(s State) error {
	if s.ID == "" {
		return fmt.Errorf("state missing ID")
	}
	if _, exists := g.States[s.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateState, s.ID)
	}

	st := s
	g.States[st.ID] = &st
	g.Order = append(g.Order, st.ID)

	if st.Parent != "" {
		if parent, ok := g.States[st.Parent]; ok && !slices.Contains(parent.Children, st.ID) {
			parent.Children = append(parent.Children, st.ID)
		}
	}
	return nil
}

// AddTransition appends an edge.
func (g *Graph) AddTransition(from, to, label string) {
	g.Transitions = append(g.Transitions, Transition{From: from, To: to, Label: label})
}

// State looks up a state by ID.
func (g *Graph) State(id string) (*State, bool) {
	s, ok := g.States[id]
	return s, ok
}

// Successors returns the transitions leaving id, in declaration order.
func (g *Graph) Successors(id string) []Transition {
	var out []Transition
	for _, t := range g.Transitions {
		if t.From == id {
			out = append(out, t)
		}
	}
	return out
}

// Contains reports whether id is nested (at any depth) inside ancestor.
func (g *Graph) Contains(ancestor, id string) bool {
	seen := map[string]bool{}
	var walk func(string) bool
	walk = func(cur string) bool {
		if seen[cur] {
			return false
		}
		seen[cur] = true
		s, ok := g.States[cur]
		if !ok {
			return false
		}
		for _, c := range s.Children {
			if c == id || walk(c) {
				return true
			}
		}
		return false
	}
	return walk(ancestor)
}

// Resolve maps a user supplied target to a state ID.
// An exact ID wins; otherwise the first state (declaration order) whose local name
// matches, then the first atomic state whose action value matches.
func (g *Graph) Resolve(target string) (string, bool) {
	if _, ok := g.States[target]; ok {
		return target, true
	}
	for _, id := range g.Order {
		if LocalName(id) == target {
			return id, true
		}
	}
	for _, id := range g.Order {
		if s := g.States[id]; s.Kind == KindAtomic && s.Value == target {
			return id, true
		}
	}
	return "", false
}

// Atomics returns the IDs of every atomic state, in declaration order.
func (g *Graph) Atomics() []string {
	var ids []string
	for _, id := range g.Order {
		if g.States[id].Kind == KindAtomic {
			ids = append(ids, id)
		}
	}
	return ids
}

// Heads returns the children a composite starts from: its initial selector first,
// then every child no sibling transitions into, in declaration order.
func (g *Graph) Heads(id string) []string {
	s, ok := g.States[id]
	if !ok {
		return nil
	}

	heads := make([]string, 0, len(s.Children))
	for _, init := range s.Initial {
		if !slices.Contains(heads, init) {
			heads = append(heads, init)
		}
	}

	for _, child := range s.Children {
		if slices.Contains(heads, child) {
			continue
		}
		reached := false
		for _, t := range g.Transitions {
			if t.To == child && !t.IsSelf() && slices.Contains(s.Children, t.From) {
				reached = true
				break
			}
		}
		if !reached {
			heads = append(heads, child)
		}
	}
	return heads
}
