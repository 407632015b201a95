package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/flowpaths/pkg/adapters/memory"
	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/aretw0/flowpaths/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunResultStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	ext := ports.SampleExtraction("isolated")
	require.NoError(t, store.Save(ctx, ext))

	ext.Actions["injected"] = domain.ActionPaths{}
	loaded, err := store.Load(ctx, "isolated")
	require.NoError(t, err)
	assert.NotContains(t, loaded.Actions, "injected")
}
