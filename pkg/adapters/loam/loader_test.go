package loam

import (
	"context"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"

	"github.com/aretw0/flowpaths/internal/testutils"
	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/aretw0/flowpaths/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkoutFiles() map[string]string {
	return map[string]string{
		"checkout.md": `---
type: sequence
entry: true
---
Checkout flow`,
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
		"checkout.gate.notify.json": `{
  "type": "event-source",
  "value": "refunds"
}`,
	}
}

func TestLoader_Contract(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t, nil)
	ctx := context.Background()

	docA := core.Document{
		ID: "a.md",
		Content: `---
id: a
type: function
value: fetch
to: b
---
Fetches the order`,
	}
	docB := core.Document{
		ID: "b.md",
		Content: `---
id: b
type: database
value: orders
---`,
	}
	require.NoError(t, repo.Save(ctx, docA))
	require.NoError(t, repo.Save(ctx, docB))

	loader := New(loam.NewTypedRepository[StateMetadata](repo))
	tests.GraphLoaderContractTest(t, loader, []string{"a", "b"}, []string{"a"})
}

func TestLoader_ScopedDocuments(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t, checkoutFiles())

	loader := New(loam.NewTypedRepository[StateMetadata](repo), WithName("checkout"))
	tests.GraphLoaderContractTest(t, loader,
		[]string{"checkout", "checkout.charge", "checkout.gate", "checkout.gate.notify", "checkout.gate.store"},
		[]string{"checkout"})

	g, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "checkout", g.Name)

	charge, ok := g.State("checkout.charge")
	require.True(t, ok)
	assert.Equal(t, domain.KindAtomic, charge.Kind)
	assert.Equal(t, domain.ActionKnative, charge.Action)
	assert.Equal(t, "charge", charge.Value)
	assert.Equal(t, "checkout", charge.Parent)

	gate, _ := g.State("checkout.gate")
	assert.Equal(t, domain.KindSwitch, gate.Kind)
	assert.ElementsMatch(t, []string{"checkout.gate.notify", "checkout.gate.store"}, gate.Children)

	notify, _ := g.State("checkout.gate.notify")
	assert.Equal(t, domain.ActionEventSource, notify.Action)
	assert.Equal(t, "refunds", notify.Value)

	require.Len(t, g.Transitions, 1)
	assert.Equal(t, domain.Transition{From: "checkout.charge", To: "checkout.gate"}, g.Transitions[0])
}

func TestLoader_ExplicitParentAndChildren(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t, map[string]string{
		"poll.md": `---
type: loop
value: body
dependent: false
entry: true
---`,
		"body.md": `---
type: sequence
children: [fetch, store]
initial: [fetch]
---`,
		"fetch.md": `---
type: function
value: fetch-page
parent: body
transitions:
  - to: store
    label: ok
---`,
		"store.md": `---
type: database
value: [pages]
parent: body
---`,
	})

	g, err := New(loam.NewTypedRepository[StateMetadata](repo)).Load(context.Background())
	require.NoError(t, err)

	poll, _ := g.State("poll")
	assert.Equal(t, domain.KindLoop, poll.Kind)
	assert.Equal(t, []string{"body"}, poll.Children)
	require.NotNil(t, poll.Dependent)
	assert.False(t, *poll.Dependent)

	body, _ := g.State("body")
	assert.Equal(t, "poll", body.Parent)
	assert.Equal(t, []string{"fetch", "store"}, body.Children)
	assert.Equal(t, []string{"fetch"}, body.Initial)

	store, _ := g.State("store")
	assert.Equal(t, "pages", store.Value, "a one-element list is accepted as value")

	require.Len(t, g.Transitions, 1)
	assert.Equal(t, domain.Transition{From: "fetch", To: "store", Label: "ok"}, g.Transitions[0])
	assert.Equal(t, []string{"poll"}, g.Entries)
}

func TestLoader_NormalizesIDs(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t, map[string]string{
		"start.md": `---
id: start.md
type: function
---
Hello`,
		"choice.json": `{
  "id": "choice.json",
  "type": "switch"
}`,
		"implicit.md": `---
type: database
---
ID is implied from filename`,
	})

	g, err := New(loam.NewTypedRepository[StateMetadata](repo)).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"choice", "implicit", "start"}, g.Order)
}

func TestLoader_DetectsCollisions(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t, map[string]string{
		"foo.md": `---
id: foo
type: function
---
Explicit ID`,
		"foo.json": `{
  "id": "foo",
  "type": "function"
}`,
	})

	_, err := New(loam.NewTypedRepository[StateMetadata](repo)).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateState)
	assert.Contains(t, err.Error(), "collision detected")
	assert.Contains(t, err.Error(), "foo")
}

func TestLoader_TransitionWithoutTarget(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t, map[string]string{
		"a.md": `---
type: function
transitions:
  - label: dangling
---`,
	})

	_, err := New(loam.NewTypedRepository[StateMetadata](repo)).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transition without target")
}

func TestStateID(t *testing.T) {
	assert.Equal(t, "checkout.charge", stateID("checkout/charge.md"))
	assert.Equal(t, "checkout.charge", stateID("checkout.charge"))
	assert.Equal(t, "node", stateID("node.yaml"))
}
