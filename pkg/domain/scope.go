package domain

import "slices"

// Scope is a view over the states and transitions local to one composite state
// (or to the top level when Owner is empty).
type Scope struct {
	Owner       string
	Members     []string
	Initial     []string
	Transitions []Transition
}

// RootScope returns the top-level scope. When the graph declares no entries,
// every top-level state without an incoming transition is treated as one.
func (g *Graph) RootScope() Scope {
	sc := Scope{}
	for _, id := range g.Order {
		if g.States[id].Parent == "" {
			sc.Members = append(sc.Members, id)
		}
	}
	sc.Transitions = g.localTransitions(sc.Members)
	sc.Initial = g.Entries
	if len(sc.Initial) == 0 {
		for _, id := range sc.Members {
			if len(sc.Incoming(id)) == 0 {
				sc.Initial = append(sc.Initial, id)
			}
		}
	}
	return sc
}

// ScopeOf returns the scope formed by the children of a composite state.
// Its initial selector is Heads(id), so a scope starts exactly where the
// expansion of the composite starts. A sequence without local transitions
// gets implicit links between its heads, in Heads order.
func (g *Graph) ScopeOf(id string) Scope {
	s, ok := g.States[id]
	if !ok {
		return Scope{Owner: id}
	}

	sc := Scope{
		Owner:       id,
		Members:     slices.Clone(s.Children),
		Transitions: g.localTransitions(s.Children),
	}
	heads := g.Heads(id)

	if s.Kind == KindSequence && len(sc.Transitions) == 0 {
		for i := 1; i < len(heads); i++ {
			sc.Transitions = append(sc.Transitions, Transition{From: heads[i-1], To: heads[i]})
		}
		if len(heads) > 0 {
			sc.Initial = heads[:1]
		}
		return sc
	}
	sc.Initial = heads
	return sc
}

// Has reports whether id is a member of the scope.
func (sc Scope) Has(id string) bool {
	return slices.Contains(sc.Members, id)
}

// IsInitial reports whether id is selected as a starting state of the scope.
func (sc Scope) IsInitial(id string) bool {
	return slices.Contains(sc.Initial, id)
}

// Incoming returns the non-self transitions ending at id.
func (sc Scope) Incoming(id string) []Transition {
	var out []Transition
	for _, t := range sc.Transitions {
		if t.To == id && !t.IsSelf() {
			out = append(out, t)
		}
	}
	return out
}

func (g *Graph) localTransitions(members []string) []Transition {
	var out []Transition
	for _, t := range g.Transitions {
		if slices.Contains(members, t.From) && slices.Contains(members, t.To) {
			out = append(out, t)
		}
	}
	return out
}
