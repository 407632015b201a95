package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/flowpaths/pkg/adapters/memory"
	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/aretw0/flowpaths/pkg/ports"
)

// countingStore counts the loads reaching the wrapped store.
type countingStore struct {
	ports.ResultStore
	loads int
}

func (s *countingStore) Load(ctx context.Context, workflow string) (*domain.Extraction, error) {
	s.loads++
	return s.ResultStore.Load(ctx, workflow)
}

func sample() *domain.Extraction {
	ext := domain.NewExtraction("checkout")
	charge := domain.Atomic{StateID: "F1", Action: domain.ActionKnative, Value: "http://billing.internal/charge"}
	store := domain.Atomic{StateID: "F2", Action: domain.ActionDatabase, Value: "postgres://admin:pw@db/orders"}
	ext.Add(charge.Value, domain.Sequence{}, domain.Sequence{Items: []domain.Element{store}})
	ext.Add(store.Value, domain.Sequence{Items: []domain.Element{charge}}, domain.Sequence{})
	return ext
}

func TestCacheMiddleware(t *testing.T) {
	ctx := context.Background()
	backend := &countingStore{ResultStore: memory.NewStore()}
	store := NewCacheMiddleware(time.Minute)(backend)
	cache := store.(*cacheMiddleware)

	now := time.Unix(1000, 0)
	cache.now = func() time.Time { return now }

	if err := store.Save(ctx, sample()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := store.Load(ctx, "checkout"); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}
	if backend.loads != 1 {
		t.Errorf("Expected 1 backend load while cached, got %d", backend.loads)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Load(ctx, "checkout"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if backend.loads != 2 {
		t.Errorf("Expected the expired entry to be reloaded, got %d loads", backend.loads)
	}

	if err := store.Delete(ctx, "checkout"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Load(ctx, "checkout"); err != domain.ErrResultNotFound {
		t.Errorf("Expected ErrResultNotFound after delete, got %v", err)
	}
}

func TestCacheMiddleware_Contract(t *testing.T) {
	ports.RunResultStoreContract(t, NewCacheMiddleware(time.Minute)(memory.NewStore()))
}

func TestRedactMiddleware(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewStore()
	store := Chain(backend,
		NewRedactMiddleware([]string{`//[^/]*@`, `\.internal`}),
	)

	original := sample()
	if err := store.Save(ctx, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, ok := original.Actions["http://billing.internal/charge"]; !ok {
		t.Fatal("The caller's extraction must not be modified")
	}

	saved, err := backend.Load(ctx, "checkout")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	names := saved.ActionNames()
	want := []string{"http://billing***/charge", "postgres:***db/orders"}
	if len(names) != 2 || names[0] != want[0] || names[1] != want[1] {
		t.Fatalf("Expected masked keys %v, got %v", want, names)
	}

	out := saved.Actions["http://billing***/charge"].Outbound[0]
	if got := domain.Format(out); got != "postgres:***db/orders" {
		t.Errorf("Expected masked values inside paths, got %q", got)
	}
}

func TestChain_Order(t *testing.T) {
	var calls []string
	tag := func(name string) Middleware {
		return func(next ports.ResultStore) ports.ResultStore {
			calls = append(calls, name)
			return next
		}
	}
	Chain(memory.NewStore(), tag("outer"), tag("inner"))
	if len(calls) != 2 || calls[0] != "inner" || calls[1] != "outer" {
		t.Errorf("Expected inner to wrap first, got %v", calls)
	}
}
