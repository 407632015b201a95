package ports

import (
	"context"

	"github.com/aretw0/flowpaths/pkg/domain"
)

// Analyzer is the query surface of the path extraction engine.
// This is the primary interface used by adapters (e.g., HTTP, MCP) that expose the engine.
type Analyzer interface {
	// Graph returns the analyzed graph for introspection.
	Graph() *domain.Graph

	// FullPaths expands every entry state into its complete path alternatives.
	FullPaths(ctx context.Context) ([]domain.Element, error)

	// Locate returns the routes from the entries down to target.
	Locate(target string) ([]domain.Route, error)

	// PathsTo returns every path that ends exactly at target.
	PathsTo(ctx context.Context, target string) ([]domain.Element, error)

	// Extract computes inbound and outbound paths for every action.
	Extract(ctx context.Context) (*domain.Extraction, error)

	// AnalyzeTargets runs PathsTo for many targets concurrently.
	AnalyzeTargets(ctx context.Context, targets []string) ([]domain.TargetReport, error)
}
