package domain

import (
	"errors"
	"fmt"
)

// ErrUnsupportedKind is returned when a state has a kind the engine cannot expand.
var ErrUnsupportedKind = errors.New("unsupported state kind")

// ErrPathExplosion is returned when the number of alternatives exceeds the configured budget.
var ErrPathExplosion = errors.New("path alternatives exceed budget")

// ErrTargetNotFound is returned when a queried target matches no state of the graph.
var ErrTargetNotFound = errors.New("target state not found")

// ErrDuplicateState is returned by loaders when two states share an ID.
var ErrDuplicateState = errors.New("duplicate state")

// ErrUnknownElementType is returned when decoding a path element with an unknown discriminator.
var ErrUnknownElementType = errors.New("unknown path element type")

// ErrResultNotFound is returned when an extraction cannot be found in the store.
var ErrResultNotFound = errors.New("extraction not found")

// UnsupportedKindError carries the offending state of an ErrUnsupportedKind failure.
type UnsupportedKindError struct {
	StateID string
	Kind    Kind
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("state %q: %s %q", e.StateID, ErrUnsupportedKind, e.Kind)
}

func (e *UnsupportedKindError) Unwrap() error {
	return ErrUnsupportedKind
}

// PathExplosionError reports which state blew the alternative budget.
type PathExplosionError struct {
	StateID string
	Count   int
	Limit   int
}

func (e *PathExplosionError) Error() string {
	return fmt.Sprintf("state %q: %d %s of %d", e.StateID, e.Count, ErrPathExplosion, e.Limit)
}

func (e *PathExplosionError) Unwrap() error {
	return ErrPathExplosion
}
