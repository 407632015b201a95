// Package redis persists extractions in Redis and serializes extractions across replicas.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/flowpaths/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "flowpaths:result:"

// Store implements ports.ResultStore using Redis.
// Extractions are stored as JSON under <prefix><workflow>; a sorted set
// scored by expiry indexes the stored workflows.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for stored extractions.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(workflow string) string {
	return s.prefix + workflow
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the extraction to Redis.
func (s *Store) Save(ctx context.Context, ext *domain.Extraction) error {
	data, err := json.Marshal(ext)
	if err != nil {
		return fmt.Errorf("failed to marshal extraction: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(ext.Workflow), data, s.ttl)

	// Score = Now + TTL. Without TTL the entry never leaves the index on its own.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: ext.Workflow,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the extraction from Redis.
func (s *Store) Load(ctx context.Context, workflow string) (*domain.Extraction, error) {
	val, err := s.client.Get(ctx, s.key(workflow)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var ext domain.Extraction
	if err := json.Unmarshal(val, &ext); err != nil {
		return nil, fmt.Errorf("failed to unmarshal extraction: %w", err)
	}
	return &ext, nil
}

// Delete removes the extraction.
func (s *Store) Delete(ctx context.Context, workflow string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(workflow))
	pipe.ZRem(ctx, s.indexKey(), workflow)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns the stored workflows, pruning expired index entries first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired results: %w", err)
	}

	workflows, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return workflows, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
