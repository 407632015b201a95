package dsl

import (
	"slices"

	"github.com/aretw0/flowpaths/pkg/domain"
)

// StateBuilder provides a fluent API for configuring a state.
type StateBuilder struct {
	state   domain.State
	builder *Builder
}

// Action marks the state as atomic with the given action type and operation value.
func (s *StateBuilder) Action(action domain.ActionType, value string) *StateBuilder {
	s.state.Kind = domain.KindAtomic
	s.state.Action = action
	s.state.Value = value
	return s
}

// Function is a generic function call.
func (s *StateBuilder) Function(value string) *StateBuilder {
	return s.Action(domain.ActionFunction, value)
}

// Knative is a Knative function call.
func (s *StateBuilder) Knative(value string) *StateBuilder {
	return s.Action(domain.ActionKnative, value)
}

// Database is a database operation.
func (s *StateBuilder) Database(value string) *StateBuilder {
	return s.Action(domain.ActionDatabase, value)
}

// EventSource emits an event.
func (s *StateBuilder) EventSource(value string) *StateBuilder {
	return s.Action(domain.ActionEventSource, value)
}

// Sequence makes the state a sequence over the given children (or over the
// states nested under its ID when none are given).
func (s *StateBuilder) Sequence(children ...string) *StateBuilder {
	return s.composite(domain.KindSequence, children)
}

// Parallel makes the state a parallel fan-out.
func (s *StateBuilder) Parallel(children ...string) *StateBuilder {
	return s.composite(domain.KindParallel, children)
}

// Switch makes the state an unresolved choice between its children.
func (s *StateBuilder) Switch(children ...string) *StateBuilder {
	return s.composite(domain.KindSwitch, children)
}

// Loop makes the state a loop over a single body.
func (s *StateBuilder) Loop(body ...string) *StateBuilder {
	return s.composite(domain.KindLoop, body)
}

// Kind sets a raw kind. Mostly useful to exercise validation.
func (s *StateBuilder) Kind(k domain.Kind) *StateBuilder {
	s.state.Kind = k
	return s
}

func (s *StateBuilder) composite(k domain.Kind, children []string) *StateBuilder {
	s.state.Kind = k
	s.state.Action = ""
	s.state.Value = ""
	s.state.Children = append(s.state.Children, children...)
	return s
}

// Initial sets the initial selector of a composite.
func (s *StateBuilder) Initial(ids ...string) *StateBuilder {
	s.state.Initial = append(s.state.Initial, ids...)
	return s
}

// Dependent overrides the engine loop dependence for this loop.
func (s *StateBuilder) Dependent(dependent bool) *StateBuilder {
	s.state.Dependent = &dependent
	return s
}

// In nests the state under a parent explicitly.
func (s *StateBuilder) In(parent string) *StateBuilder {
	s.state.Parent = parent
	return s
}

// Go adds an unlabeled transition to the target state.
func (s *StateBuilder) Go(target string) *StateBuilder {
	return s.On("", target)
}

// On adds a labeled transition to the target state.
func (s *StateBuilder) On(label, target string) *StateBuilder {
	s.builder.transitions = append(s.builder.transitions, domain.Transition{
		From:  s.state.ID,
		To:    target,
		Label: label,
	})
	return s
}

// Entry declares the state as an entry point of the graph.
func (s *StateBuilder) Entry() *StateBuilder {
	if !slices.Contains(s.builder.entries, s.state.ID) {
		s.builder.entries = append(s.builder.entries, s.state.ID)
	}
	return s
}

// Build returns the underlying domain.State.
// This is primarily used by the Builder, but exposed for advanced usage.
func (s *StateBuilder) Build() domain.State {
	return s.state
}
