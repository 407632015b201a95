package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventExpand           EventType = "expand"
	EventCycle            EventType = "cycle"
	EventUnknownReference EventType = "unknown_reference"
	EventPathExplosion    EventType = "path_explosion"
	EventTargetDone       EventType = "target_done"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Graph     string    `json:"graph,omitempty"`
}

// StateEvent is emitted while a state is being expanded.
type StateEvent struct {
	EventBase
	StateID string `json:"state_id"`
	Kind    Kind   `json:"kind,omitempty"`
	// Alternatives is the number of paths the expansion produced (or attempted, for explosions).
	Alternatives int `json:"alternatives,omitempty"`
}

// TargetEvent is emitted when a per-target query finishes.
type TargetEvent struct {
	EventBase
	Target   string        `json:"target"`
	Paths    int           `json:"paths"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// AnalysisHooks defines callbacks for engine observability.
// Every hook is optional.
type AnalysisHooks struct {
	OnExpand           func(context.Context, *StateEvent)
	OnCycle            func(context.Context, *StateEvent)
	OnUnknownReference func(context.Context, *StateEvent)
	OnPathExplosion    func(context.Context, *StateEvent)
	OnTargetDone       func(context.Context, *TargetEvent)
}
