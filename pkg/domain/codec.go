package domain

import (
	"encoding/json"
	"fmt"
)

// Discriminator values of serialized path elements.
const (
	TypeAtomic   = "atomic"
	TypeSequence = "sequence"
	TypeParallel = "parallel"
	TypeSwitch   = "switch"
	TypeLoop     = "loop"
	TypeLoopStop = "loop-stop"
	TypeUnknown  = "unknown"
)

// Node is the wire shape of a path element: an object tagged by Type
// carrying the fields of its variant. The same shape is used for JSON and YAML.
type Node struct {
	Type          string `json:"type" yaml:"type"`
	State         string `json:"state,omitempty" yaml:"state,omitempty"`
	Action        string `json:"action,omitempty" yaml:"action,omitempty"`
	Value         string `json:"value,omitempty" yaml:"value,omitempty"`
	Continuation  []Node `json:"continuation,omitempty" yaml:"continuation,omitempty"`
	Items         []Node `json:"items,omitempty" yaml:"items,omitempty"`
	Loop          bool   `json:"loop,omitempty" yaml:"loop,omitempty"`
	Branches      []Node `json:"branches,omitempty" yaml:"branches,omitempty"`
	Body          *Node  `json:"body,omitempty" yaml:"body,omitempty"`
	MinIterations *int   `json:"min_iterations,omitempty" yaml:"min_iterations,omitempty"`
	Ref           string `json:"ref,omitempty" yaml:"ref,omitempty"`
}

// Encode converts an element into its wire shape.
func Encode(e Element) Node {
	switch v := e.(type) {
	case Atomic:
		return Node{
			Type:         TypeAtomic,
			State:        v.StateID,
			Action:       string(v.Action),
			Value:        v.Value,
			Continuation: EncodeAll(v.Continuation),
		}
	case Sequence:
		return Node{Type: TypeSequence, Items: EncodeAll(v.Items), Loop: v.Loop}
	case Parallel:
		return Node{Type: TypeParallel, Branches: EncodeAll(v.Branches)}
	case Switch:
		return Node{Type: TypeSwitch, Branches: EncodeAll(v.Branches)}
	case Loop:
		minIter := v.MinIterations
		n := Node{Type: TypeLoop, MinIterations: &minIter}
		if v.Body != nil {
			body := Encode(v.Body)
			n.Body = &body
		}
		return n
	case LoopStop:
		return Node{Type: TypeLoopStop, State: v.StateID}
	case Unknown:
		return Node{Type: TypeUnknown, Ref: v.Ref}
	default:
		panic(fmt.Sprintf("domain: unexpected path element %T", e))
	}
}

// EncodeAll encodes a list of elements. Empty input yields nil.
func EncodeAll(elems []Element) []Node {
	if len(elems) == 0 {
		return nil
	}
	out := make([]Node, len(elems))
	for i, e := range elems {
		out[i] = Encode(e)
	}
	return out
}

// Decode converts a wire node back into an element.
func Decode(n Node) (Element, error) {
	switch n.Type {
	case TypeAtomic:
		cont, err := DecodeAll(n.Continuation)
		if err != nil {
			return nil, err
		}
		return Atomic{StateID: n.State, Action: ActionType(n.Action), Value: n.Value, Continuation: cont}, nil
	case TypeSequence:
		items, err := DecodeAll(n.Items)
		if err != nil {
			return nil, err
		}
		return Sequence{Items: items, Loop: n.Loop}, nil
	case TypeParallel:
		branches, err := DecodeAll(n.Branches)
		if err != nil {
			return nil, err
		}
		return Parallel{Branches: branches}, nil
	case TypeSwitch:
		branches, err := DecodeAll(n.Branches)
		if err != nil {
			return nil, err
		}
		return Switch{Branches: branches}, nil
	case TypeLoop:
		l := Loop{}
		if n.MinIterations != nil {
			l.MinIterations = *n.MinIterations
		}
		if n.Body != nil {
			body, err := Decode(*n.Body)
			if err != nil {
				return nil, err
			}
			l.Body = body
		}
		return l, nil
	case TypeLoopStop:
		return LoopStop{StateID: n.State}, nil
	case TypeUnknown:
		return Unknown{Ref: n.Ref}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownElementType, n.Type)
	}
}

// DecodeAll decodes a list of wire nodes. Empty input yields nil.
func DecodeAll(nodes []Node) ([]Element, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	out := make([]Element, len(nodes))
	for i, n := range nodes {
		e, err := Decode(n)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// UnmarshalElement parses a single JSON encoded element.
func UnmarshalElement(data []byte) (Element, error) {
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return Decode(n)
}

func (v Atomic) MarshalJSON() ([]byte, error)   { return json.Marshal(Encode(v)) }
func (v Sequence) MarshalJSON() ([]byte, error) { return json.Marshal(Encode(v)) }
func (v Parallel) MarshalJSON() ([]byte, error) { return json.Marshal(Encode(v)) }
func (v Switch) MarshalJSON() ([]byte, error)   { return json.Marshal(Encode(v)) }
func (v Loop) MarshalJSON() ([]byte, error)     { return json.Marshal(Encode(v)) }
func (v LoopStop) MarshalJSON() ([]byte, error) { return json.Marshal(Encode(v)) }
func (v Unknown) MarshalJSON() ([]byte, error)  { return json.Marshal(Encode(v)) }

// MarshalYAML implementations let yaml.v3 emit the same shape as JSON.

func (v Atomic) MarshalYAML() (any, error)   { return Encode(v), nil }
func (v Sequence) MarshalYAML() (any, error) { return Encode(v), nil }
func (v Parallel) MarshalYAML() (any, error) { return Encode(v), nil }
func (v Switch) MarshalYAML() (any, error)   { return Encode(v), nil }
func (v Loop) MarshalYAML() (any, error)     { return Encode(v), nil }
func (v LoopStop) MarshalYAML() (any, error) { return Encode(v), nil }
func (v Unknown) MarshalYAML() (any, error)  { return Encode(v), nil }
