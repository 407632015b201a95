package flowpaths_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/flowpaths"
	"github.com/aretw0/flowpaths/internal/testutils"
	"github.com/aretw0/flowpaths/pkg/adapters/hcl"
	loamAdapter "github.com/aretw0/flowpaths/pkg/adapters/loam"
	"github.com/aretw0/flowpaths/pkg/adapters/memory"
	"github.com/aretw0/flowpaths/pkg/adapters/plantuml"
	"github.com/aretw0/flowpaths/pkg/adapters/workflow"
	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/aretw0/flowpaths/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkoutGraph(t *testing.T) *domain.Graph {
	t.Helper()
	b := dsl.New("checkout")
	b.Add("E").Sequence().Entry()
	b.Add("E.F1").Knative("charge").Go("E.S")
	b.Add("E.S").Switch()
	b.Add("E.S.F2").Database("orders")
	b.Add("E.S.F3").EventSource("refunds")
	g, err := b.Graph()
	require.NoError(t, err)
	return g
}

func TestNew_FromWorkflowDocument(t *testing.T) {
	ctx := context.Background()
	x, err := flowpaths.New(ctx, "pkg/adapters/workflow/testdata/checkout.yaml")
	require.NoError(t, err)

	assert.Equal(t, "checkout", x.Name())

	paths, err := x.FullPaths(ctx)
	require.NoError(t, err)
	assert.Len(t, paths, 2, "one alternative per switch branch")

	ext, err := x.Extract(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"F1", "F2", "F3"}, ext.ActionNames())
}

func TestNew_RequiresPathOrLoader(t *testing.T) {
	_, err := flowpaths.New(context.Background(), "")
	assert.Error(t, err)

	_, err = flowpaths.New(context.Background(), "testdata/does-not-exist.yaml")
	assert.Error(t, err)
}

func TestOpenLoader(t *testing.T) {
	tests := []struct {
		path string
		want any
	}{
		{"pkg/adapters/workflow/testdata/checkout.yaml", &workflow.Loader{}},
		{"pkg/adapters/workflow/testdata/foreach.json", &workflow.Loader{}},
		{"pkg/adapters/hcl/testdata/checkout.hcl", &hcl.Loader{}},
		{"pkg/adapters/plantuml/testdata/authorization.puml", &plantuml.Loader{}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			loader, err := flowpaths.OpenLoader(tt.path)
			require.NoError(t, err)
			assert.IsType(t, tt.want, loader)
		})
	}
}

func TestNew_FromDocumentDirectory(t *testing.T) {
	dir, _ := testutils.SetupTestRepo(t, map[string]string{
		"checkout.md": `---
type: sequence
entry: true
---`,
		"checkout.charge.md": `---
type: function:knative
value: charge
to: gate
---`,
		"checkout.gate.md": `---
type: switch
---`,
		"checkout.gate.store.md": `---
type: database
value: orders
---`,
		"checkout.gate.notify.md": `---
type: event-source
value: refunds
---`,
	})

	loader, err := flowpaths.OpenLoader(dir)
	require.NoError(t, err)
	assert.IsType(t, &loamAdapter.Loader{}, loader)

	ctx := context.Background()
	x, err := flowpaths.New(ctx, dir)
	require.NoError(t, err)

	paths, err := x.FullPaths(ctx)
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	ext, err := x.Extract(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"charge", "orders", "refunds"}, ext.ActionNames())
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []*domain.Extraction
}

func (p *recordingPublisher) Publish(ctx context.Context, ext *domain.Extraction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, ext)
	return nil
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	pub := &recordingPublisher{}

	x, err := flowpaths.New(ctx, "",
		flowpaths.WithLoader(memory.NewLoader(checkoutGraph(t))),
		flowpaths.WithStore(store),
		flowpaths.WithPublisher(pub),
		flowpaths.WithLocker(memory.NewLocker(), time.Second),
	)
	require.NoError(t, err)

	ext, err := x.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"charge", "orders", "refunds"}, ext.ActionNames())

	saved, err := store.Load(ctx, "checkout")
	require.NoError(t, err)
	assert.Equal(t, ext.ID, saved.ID)

	require.Len(t, pub.published, 1)
	assert.Equal(t, ext.ID, pub.published[0].ID)

	// The lock is released: a second export does not block.
	_, err = x.Export(ctx)
	require.NoError(t, err)
}

func TestOptions_ReachTheEngine(t *testing.T) {
	ctx := context.Background()
	x, err := flowpaths.New(ctx, "",
		flowpaths.WithLoader(memory.NewLoader(checkoutGraph(t))),
		flowpaths.WithSwitchMode(domain.SwitchEmbed),
	)
	require.NoError(t, err)

	paths, err := x.FullPaths(ctx)
	require.NoError(t, err)
	assert.Len(t, paths, 1, "an embedded switch keeps a single alternative")

	_, err = flowpaths.New(ctx, "",
		flowpaths.WithLoader(memory.NewLoader(checkoutGraph(t))),
		flowpaths.WithMaxAlternatives(1),
	)
	require.NoError(t, err, "the budget applies to queries, not to loading")
}

func TestWatch_Reloads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loader := memory.NewLoader(checkoutGraph(t))
	x, err := flowpaths.New(ctx, "", flowpaths.WithLoader(loader))
	require.NoError(t, err)

	changes, err := x.Watch(ctx)
	require.NoError(t, err)

	next := dsl.New("checkout-v2")
	next.Add("only").Function("ping").Entry()
	g, err := next.Graph()
	require.NoError(t, err)
	loader.Replace(g)

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a reload signal")
	}
	assert.Equal(t, "checkout-v2", x.Graph().Name)
	assert.Equal(t, "checkout-v2", x.Name())
}

func TestWatch_ConcurrentExport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loader := memory.NewLoader(checkoutGraph(t))
	store := memory.NewStore()
	x, err := flowpaths.New(ctx, "",
		flowpaths.WithLoader(loader),
		flowpaths.WithStore(store),
		flowpaths.WithLocker(memory.NewLocker(), time.Second),
	)
	require.NoError(t, err)

	changes, err := x.Watch(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 20 {
			next := dsl.New(fmt.Sprintf("checkout-%d", i))
			next.Add("only").Function("ping").Entry()
			g, err := next.Graph()
			if err != nil {
				t.Error(err)
				return
			}
			loader.Replace(g)
		}
	}()
	go func() {
		defer wg.Done()
		for range 20 {
			if _, err := x.Export(ctx); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	wg.Wait()

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a reload signal")
	}
	assert.Contains(t, x.Name(), "checkout")
}

func TestWatch_NotWatchable(t *testing.T) {
	x, err := flowpaths.New(context.Background(), "pkg/adapters/workflow/testdata/checkout.yaml")
	require.NoError(t, err)

	_, err = x.Watch(context.Background())
	assert.ErrorIs(t, err, flowpaths.ErrNotWatchable)
}
