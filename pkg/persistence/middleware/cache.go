package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/aretw0/flowpaths/pkg/ports"
)

type cacheEntry struct {
	ext     *domain.Extraction
	expires time.Time
}

type cacheMiddleware struct {
	next ports.ResultStore
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCacheMiddleware keeps loaded extractions in memory for ttl.
// Save and Delete through the middleware invalidate the workflow entry;
// writes made by other processes show up once the entry expires.
func NewCacheMiddleware(ttl time.Duration) Middleware {
	return func(next ports.ResultStore) ports.ResultStore {
		return &cacheMiddleware{
			next:    next,
			ttl:     ttl,
			now:     time.Now,
			entries: make(map[string]cacheEntry),
		}
	}
}

func (m *cacheMiddleware) Save(ctx context.Context, ext *domain.Extraction) error {
	m.forget(ext.Workflow)
	return m.next.Save(ctx, ext)
}

func (m *cacheMiddleware) Load(ctx context.Context, workflow string) (*domain.Extraction, error) {
	m.mu.Lock()
	e, ok := m.entries[workflow]
	if ok && m.now().Before(e.expires) {
		m.mu.Unlock()
		return e.ext, nil
	}
	delete(m.entries, workflow)
	m.mu.Unlock()

	ext, err := m.next.Load(ctx, workflow)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.entries[workflow] = cacheEntry{ext: ext, expires: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return ext, nil
}

func (m *cacheMiddleware) Delete(ctx context.Context, workflow string) error {
	m.forget(workflow)
	return m.next.Delete(ctx, workflow)
}

func (m *cacheMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *cacheMiddleware) forget(workflow string) {
	m.mu.Lock()
	delete(m.entries, workflow)
	m.mu.Unlock()
}
