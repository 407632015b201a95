package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SampleExtraction builds a small extraction touching every path element variant.
func SampleExtraction(workflow string) *domain.Extraction {
	ext := domain.NewExtraction(workflow)
	charge := domain.Atomic{StateID: "E.F1", Action: domain.ActionKnative, Value: "charge"}
	ext.Add("charge",
		domain.Sequence{},
		domain.Sequence{Items: []domain.Element{
			domain.Switch{Branches: []domain.Element{
				domain.Sequence{Items: []domain.Element{domain.Atomic{StateID: "E.S.F2", Action: domain.ActionDatabase, Value: "orders"}}},
				domain.Sequence{Items: []domain.Element{domain.LoopStop{StateID: "E"}}},
			}},
			domain.Loop{Body: domain.Sequence{Items: []domain.Element{domain.Unknown{Ref: "ghost"}}}, MinIterations: 1},
			domain.Parallel{Branches: []domain.Element{domain.Sequence{Items: []domain.Element{charge}, Loop: true}}},
		}},
	)
	return ext
}

// RunResultStoreContract runs a suite of tests to verify that a ResultStore implementation
// adheres to the defined interface contract.
func RunResultStoreContract(t *testing.T, store ResultStore) {
	ctx := context.Background()
	workflow := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		ext := SampleExtraction(workflow)

		err := store.Save(ctx, ext)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, workflow)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, ext.ID, loaded.ID)
		assert.Equal(t, ext.Workflow, loaded.Workflow)
		assert.Equal(t, ext.Actions, loaded.Actions)
		assert.True(t, ext.CreatedAt.Equal(loaded.CreatedAt), "CreatedAt should survive persistence")
	})

	t.Run("Save replaces", func(t *testing.T) {
		first := SampleExtraction(workflow)
		second := SampleExtraction(workflow)
		require.NoError(t, store.Save(ctx, first))
		require.NoError(t, store.Save(ctx, second))

		loaded, err := store.Load(ctx, workflow)
		require.NoError(t, err)
		assert.Equal(t, second.ID, loaded.ID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+workflow)
		assert.ErrorIs(t, err, domain.ErrResultNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, SampleExtraction(workflow)))

		err := store.Delete(ctx, workflow)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, workflow)
		assert.ErrorIs(t, err, domain.ErrResultNotFound, "Load after Delete should return ErrResultNotFound")
	})

	t.Run("List", func(t *testing.T) {
		w1 := workflow + "-1"
		w2 := workflow + "-2"
		require.NoError(t, store.Save(ctx, SampleExtraction(w1)))
		require.NoError(t, store.Save(ctx, SampleExtraction(w2)))

		defer func() {
			_ = store.Delete(ctx, w1)
			_ = store.Delete(ctx, w2)
		}()

		workflows, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, workflows, w1)
		assert.Contains(t, workflows, w2)
	})
}
