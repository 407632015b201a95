package ports

import (
	"context"

	"github.com/aretw0/flowpaths/pkg/domain"
)

// ResultStore defines the interface for persisting extraction results.
// Results are keyed by workflow name; saving again replaces the previous extraction.
type ResultStore interface {
	// Save persists the extraction under its workflow name.
	Save(ctx context.Context, ext *domain.Extraction) error

	// Load retrieves the latest extraction of a workflow.
	// Returns domain.ErrResultNotFound if nothing was saved for it.
	Load(ctx context.Context, workflow string) (*domain.Extraction, error)

	// Delete removes the extraction of a workflow.
	Delete(ctx context.Context, workflow string) error

	// List returns the names of the workflows with a stored extraction.
	List(ctx context.Context) ([]string, error)
}

// ResultPublisher broadcasts finished extractions (e.g., to a message broker).
type ResultPublisher interface {
	Publish(ctx context.Context, ext *domain.Extraction) error
}
