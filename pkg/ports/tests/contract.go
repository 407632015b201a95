package tests

import (
	"context"
	"testing"

	"github.com/aretw0/flowpaths/pkg/ports"
)

// GraphLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.GraphLoader.
// expected lists the state IDs the loaded graph must contain, and entries its entry states.
func GraphLoaderContractTest(t *testing.T, loader ports.GraphLoader, expected []string, entries []string) {
	t.Helper()
	ctx := context.Background()

	graph, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error loading graph: %v", err)
	}

	t.Run("States", func(t *testing.T) {
		if len(graph.States) != len(expected) {
			t.Errorf("expected %d states, got %d (%v)", len(expected), len(graph.States), graph.Order)
		}
		for _, id := range expected {
			if _, ok := graph.State(id); !ok {
				t.Errorf("state %s missing from graph", id)
			}
		}
		if len(graph.Order) != len(graph.States) {
			t.Errorf("order lists %d states, arena holds %d", len(graph.Order), len(graph.States))
		}
	})

	t.Run("Entries", func(t *testing.T) {
		got := graph.RootScope().Initial
		if len(got) != len(entries) {
			t.Fatalf("expected entries %v, got %v", entries, got)
		}
		for i := range entries {
			if got[i] != entries[i] {
				t.Errorf("entry %d: got %q, want %q", i, got[i], entries[i])
			}
		}
	})

	t.Run("Parent links", func(t *testing.T) {
		for _, id := range graph.Order {
			s, _ := graph.State(id)
			for _, child := range s.Children {
				c, ok := graph.State(child)
				if !ok {
					t.Errorf("state %s lists unknown child %s", id, child)
					continue
				}
				if c.Parent != id {
					t.Errorf("child %s of %s has parent %q", child, id, c.Parent)
				}
			}
		}
	})

	t.Run("Stable", func(t *testing.T) {
		again, err := loader.Load(ctx)
		if err != nil {
			t.Fatalf("unexpected error reloading graph: %v", err)
		}
		if len(again.Order) != len(graph.Order) {
			t.Fatalf("reload changed state count: %d != %d", len(again.Order), len(graph.Order))
		}
		for i := range graph.Order {
			if again.Order[i] != graph.Order[i] {
				t.Errorf("reload changed order at %d: %s != %s", i, again.Order[i], graph.Order[i])
			}
		}
	})
}
