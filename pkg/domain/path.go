package domain

import "fmt"

// Element is one node of a path tree. The set of variants is closed:
// Atomic, Sequence, Parallel, Switch, Loop, LoopStop and Unknown.
// Elements are immutable once built; helpers return copies.
type Element interface {
	element()
}

// Atomic is an observable action. Its continuation is nested in the node,
// so a full path is a tree rooted at its entry action(s).
type Atomic struct {
	StateID      string
	Action       ActionType
	Value        string
	Continuation []Element
}

// Key identifies the action for per-action extraction: the operation value
// when present, the state ID otherwise.
func (a Atomic) Key() string {
	if a.Value != "" {
		return a.Value
	}
	return a.StateID
}

// WithContinuation returns a copy of the node with the given continuation.
func (a Atomic) WithContinuation(next []Element) Atomic {
	a.Continuation = next
	return a
}

// Sequence is an ordered list of elements. Loop marks the single
// representative pass of an independent loop.
type Sequence struct {
	Items []Element
	Loop  bool
}

// Parallel holds concurrent branches.
type Parallel struct {
	Branches []Element
}

// Switch holds alternatives whose choice is left unresolved.
type Switch struct {
	Branches []Element
}

// Loop repeats its body at least MinIterations times (0 or 1).
type Loop struct {
	Body          Element
	MinIterations int
}

// LoopStop marks where expansion stopped because a state repeated on the current path.
type LoopStop struct {
	StateID string
}

// Unknown stands for a reference to a state absent from the graph.
type Unknown struct {
	Ref string
}

func (Atomic) element()   {}
func (Sequence) element() {}
func (Parallel) element() {}
func (Switch) element()   {}
func (Loop) element()     {}
func (LoopStop) element() {}
func (Unknown) element()  {}

// NewSequence wraps items in a Sequence. A sole Sequence member is collapsed
// into its parent so sequences never wrap a single sequence.
func NewSequence(items []Element, loop bool) Sequence {
	switch len(items) {
	case 0:
		return Sequence{Loop: loop}
	case 1:
		if inner, ok := items[0].(Sequence); ok {
			if !loop {
				return inner
			}
			return Sequence{Items: inner.Items, Loop: true}
		}
	}
	return Sequence{Items: items, Loop: loop}
}

// Unwrap returns the items of a non-loop Sequence, or the element itself as a single item.
func Unwrap(e Element) []Element {
	if s, ok := e.(Sequence); ok && !s.Loop {
		return s.Items
	}
	return []Element{e}
}

// Walk visits e and its descendants depth-first, left to right.
// Returning false from fn skips the descendants of the current element.
func Walk(e Element, fn func(Element) bool) {
	if !fn(e) {
		return
	}
	switch v := e.(type) {
	case Atomic:
		for _, c := range v.Continuation {
			Walk(c, fn)
		}
	case Sequence:
		for _, c := range v.Items {
			Walk(c, fn)
		}
	case Parallel:
		for _, c := range v.Branches {
			Walk(c, fn)
		}
	case Switch:
		for _, c := range v.Branches {
			Walk(c, fn)
		}
	case Loop:
		if v.Body != nil {
			Walk(v.Body, fn)
		}
	case LoopStop, Unknown:
	default:
		panic(fmt.Sprintf("domain: unexpected path element %T", e))
	}
}

// Keys returns the distinct atomic keys found under e, in traversal order.
func Keys(e Element) []string {
	var keys []string
	seen := map[string]bool{}
	Walk(e, func(el Element) bool {
		if a, ok := el.(Atomic); ok && !seen[a.Key()] {
			seen[a.Key()] = true
			keys = append(keys, a.Key())
		}
		return true
	})
	return keys
}
