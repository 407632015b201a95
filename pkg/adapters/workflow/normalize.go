package workflow

import (
	"fmt"
	"slices"

	"github.com/aretw0/flowpaths/pkg/domain"
)

type normalizer struct {
	declared    map[string]bool
	states      []domain.State
	transitions []domain.Transition
}

// Normalize resolves the references of a document and builds its graph.
func Normalize(doc *Document) (*domain.Graph, error) {
	n := &normalizer{declared: make(map[string]bool)}
	if err := n.declare(doc.States, ""); err != nil {
		return nil, err
	}
	n.build(doc.States, "")
	n.adoptReferencedChildren()

	g := domain.NewGraph(doc.Name)
	for _, s := range n.states {
		if err := g.AddState(s); err != nil {
			return nil, err
		}
	}
	g.Transitions = n.transitions
	for _, e := range doc.Entries {
		g.Entries = append(g.Entries, n.resolve(e, ""))
	}
	return g, nil
}

func (n *normalizer) declare(list []StateSpec, parent string) error {
	for _, s := range list {
		id := domain.JoinID(parent, s.ID)
		if n.declared[id] {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateState, id)
		}
		n.declared[id] = true
		if err := n.declare(s.States, id); err != nil {
			return err
		}
	}
	return nil
}

// build emits states in document order, parents before their nested children.
func (n *normalizer) build(list []StateSpec, parent string) {
	for _, s := range list {
		id := domain.JoinID(parent, s.ID)
		kind, action := KindOf(s.Type)
		st := domain.State{
			ID:        id,
			Kind:      kind,
			Action:    action,
			Parent:    parent,
			Dependent: s.Dependent,
		}

		if kind == domain.KindAtomic {
			if len(s.Value) > 0 {
				st.Value = s.Value[0]
			}
		} else {
			for _, c := range s.States {
				st.Children = append(st.Children, domain.JoinID(id, c.ID))
			}
			for _, ref := range s.Value {
				child := n.resolve(ref, id, parent)
				if !slices.Contains(st.Children, child) {
					st.Children = append(st.Children, child)
				}
			}
		}
		for _, ref := range s.Initial {
			st.Initial = append(st.Initial, n.resolve(ref, id, parent))
		}

		for _, to := range s.Transition {
			n.transitions = append(n.transitions, domain.Transition{From: id, To: n.resolve(to, parent)})
		}
		for _, t := range s.Transitions {
			n.transitions = append(n.transitions, domain.Transition{From: id, To: n.resolve(t.To, parent), Label: t.Label})
		}

		n.states = append(n.states, st)
		n.build(s.States, id)
	}
}

// adoptReferencedChildren nests top-level states under the first composite
// naming them in its value list.
func (n *normalizer) adoptReferencedChildren() {
	index := make(map[string]int, len(n.states))
	for i, s := range n.states {
		index[s.ID] = i
	}
	for _, s := range n.states {
		for _, child := range s.Children {
			i, ok := index[child]
			if !ok || child == s.ID || n.states[i].Parent != "" {
				continue
			}
			n.states[i].Parent = s.ID
		}
	}
}

// resolve finds the declared state a reference points at, trying each scope
// innermost first and then the reference as an absolute ID. Undeclared
// references are kept verbatim and surface as unknown during analysis.
func (n *normalizer) resolve(ref string, scopes ...string) string {
	for _, scope := range scopes {
		if scope == "" {
			continue
		}
		if id := domain.JoinID(scope, ref); n.declared[id] {
			return id
		}
	}
	return ref
}
