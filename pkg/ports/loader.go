package ports

import (
	"context"

	"github.com/aretw0/flowpaths/pkg/domain"
)

// GraphLoader defines how the extractor retrieves a workflow graph.
// This allows the source format (Loam, YAML, HCL, Memory) to be decoupled.
type GraphLoader interface {
	// Load parses the underlying source and returns its normalized graph.
	// The returned graph must not be mutated by the caller.
	Load(ctx context.Context) (*domain.Graph, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload in long-running servers.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying graph changes.
	// It abstracts away the specific event details, signaling only that a reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
