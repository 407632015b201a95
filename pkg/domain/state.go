package domain

import "strings"

// Kind defines the control flow behavior of a state.
type Kind string

const (
	// KindAtomic is a single externally observable action.
	KindAtomic Kind = "atomic"
	// KindSequence runs its children one after the other.
	KindSequence Kind = "sequence"
	// KindParallel fans out to every child concurrently.
	KindParallel Kind = "parallel"
	// KindSwitch runs exactly one of its children (the choice is never resolved).
	KindSwitch Kind = "switch"
	// KindLoop repeats its single body child.
	KindLoop Kind = "loop"
)

// Valid reports whether the kind is one the engine knows how to expand.
func (k Kind) Valid() bool {
	switch k {
	case KindAtomic, KindSequence, KindParallel, KindSwitch, KindLoop:
		return true
	}
	return false
}

// Composite reports whether states of this kind own children.
func (k Kind) Composite() bool {
	return k.Valid() && k != KindAtomic
}

// ActionType classifies atomic states. Loaders keep unknown values as-is.
type ActionType string

const (
	ActionFunction    ActionType = "function"
	ActionKnative     ActionType = "function:knative"
	ActionDatabase    ActionType = "database"
	ActionEventSource ActionType = "event-source"
)

// Separator joins the local names of nested states into scoped IDs ("parent.child").
const Separator = "."

// State is one node of the workflow graph.
type State struct {
	// ID is unique in the graph arena. Nested states use scoped addressing.
	ID   string `json:"id" yaml:"id"`
	Kind Kind   `json:"kind" yaml:"kind"`

	// Action and Value describe atomic states.
	Action ActionType `json:"action,omitempty" yaml:"action,omitempty"`
	Value  string     `json:"value,omitempty" yaml:"value,omitempty"`

	// Parent is the enclosing composite, empty at top level.
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`

	// Children lists child IDs in declaration order. Loops carry exactly one body.
	Children []string `json:"children,omitempty" yaml:"children,omitempty"`

	// Initial selects the child(ren) that start the composite.
	// A single ID for sequences and switches, one per branch for parallels.
	Initial []string `json:"initial,omitempty" yaml:"initial,omitempty"`

	// Dependent overrides the engine-wide loop dependence setting when non-nil.
	Dependent *bool `json:"dependent,omitempty" yaml:"dependent,omitempty"`
}

// LocalName returns the last segment of a scoped ID.
func LocalName(id string) string {
	if i := strings.LastIndex(id, Separator); i >= 0 {
		return id[i+len(Separator):]
	}
	return id
}

// JoinID builds the scoped ID of a child.
func JoinID(parent, local string) string {
	if parent == "" {
		return local
	}
	return parent + Separator + local
}
