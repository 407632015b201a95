// Package postgres persists extractions in PostgreSQL through a pgx connection pool.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS flowpaths_extractions (
	workflow   TEXT PRIMARY KEY,
	id         UUID NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	document   JSONB NOT NULL
)`

// Store implements ports.ResultStore on a single table keyed by workflow name.
// The full extraction is kept as JSONB; id and created_at are lifted out for querying.
type Store struct {
	pool *pgxpool.Pool
}

// NewPool opens and pings a connection pool.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 10
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("new pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

// New creates a store over an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the results table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create extractions table: %w", err)
	}
	return nil
}

// Save upserts the extraction of a workflow.
func (s *Store) Save(ctx context.Context, ext *domain.Extraction) error {
	doc, err := json.Marshal(ext)
	if err != nil {
		return fmt.Errorf("marshal extraction: %w", err)
	}

	query := `
		INSERT INTO flowpaths_extractions (workflow, id, created_at, document)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (workflow) DO UPDATE
		SET id = EXCLUDED.id, created_at = EXCLUDED.created_at, document = EXCLUDED.document
	`
	if _, err := s.pool.Exec(ctx, query, ext.Workflow, ext.ID, ext.CreatedAt, doc); err != nil {
		return fmt.Errorf("upsert extraction: %w", err)
	}
	return nil
}

// Load returns the stored extraction of a workflow.
func (s *Store) Load(ctx context.Context, workflow string) (*domain.Extraction, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document FROM flowpaths_extractions WHERE workflow = $1`,
		workflow,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get extraction: %w", err)
	}

	var ext domain.Extraction
	if err := json.Unmarshal(doc, &ext); err != nil {
		return nil, fmt.Errorf("unmarshal extraction: %w", err)
	}
	return &ext, nil
}

// Delete removes the extraction of a workflow.
func (s *Store) Delete(ctx context.Context, workflow string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM flowpaths_extractions WHERE workflow = $1`, workflow); err != nil {
		return fmt.Errorf("delete extraction: %w", err)
	}
	return nil
}

// List returns the stored workflow names in alphabetical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT workflow FROM flowpaths_extractions ORDER BY workflow`)
	if err != nil {
		return nil, fmt.Errorf("list extractions: %w", err)
	}
	workflows, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan workflow: %w", err)
	}
	return workflows, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}
