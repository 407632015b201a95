package dsl

import (
	"context"
	"testing"

	"github.com/aretw0/flowpaths/pkg/domain"
)

func TestBuilder_ScopedFlow(t *testing.T) {
	// 1. Build the graph using DSL
	b := New("checkout")

	b.Add("E").Sequence().Entry()
	b.Add("E.F1").Knative("charge").Go("E.S")
	b.Add("E.S").Switch()
	b.Add("E.S.F2").Database("orders")
	b.Add("E.S.F3").EventSource("refunds")

	// 2. Compile to Loader
	loader, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	g, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// 3. Verify the nesting derived from the IDs
	e, ok := g.State("E")
	if !ok {
		t.Fatal("state E missing")
	}
	if e.Kind != domain.KindSequence {
		t.Errorf("Expected E kind 'sequence', got '%s'", e.Kind)
	}
	if len(e.Children) != 2 || e.Children[0] != "E.F1" || e.Children[1] != "E.S" {
		t.Errorf("Expected E children [E.F1 E.S], got %v", e.Children)
	}

	f2, _ := g.State("E.S.F2")
	if f2.Parent != "E.S" {
		t.Errorf("Expected E.S.F2 parent 'E.S', got '%s'", f2.Parent)
	}
	if f2.Action != domain.ActionDatabase || f2.Value != "orders" {
		t.Errorf("Expected database action 'orders', got %s %q", f2.Action, f2.Value)
	}

	// 4. Transitions and entries
	if len(g.Transitions) != 1 || g.Transitions[0].To != "E.S" {
		t.Fatalf("Expected a single transition to E.S, got %v", g.Transitions)
	}
	if len(g.Entries) != 1 || g.Entries[0] != "E" {
		t.Errorf("Expected entries [E], got %v", g.Entries)
	}
}

func TestBuilder_ExplicitChildren(t *testing.T) {
	b := New("flat")
	b.Add("loop").Loop("body")
	b.Add("body").Sequence("a", "b")
	b.Add("a").Function("fetch").Go("b")
	b.Add("b").Function("store")

	g, err := b.Graph()
	if err != nil {
		t.Fatalf("Graph() failed: %v", err)
	}

	body, _ := g.State("body")
	if body.Parent != "loop" {
		t.Errorf("Expected body parent 'loop', got '%s'", body.Parent)
	}
	a, _ := g.State("a")
	if a.Parent != "body" {
		t.Errorf("Expected a parent 'body', got '%s'", a.Parent)
	}
	loop, _ := g.State("loop")
	if len(loop.Children) != 1 {
		t.Errorf("Expected loop to have one child, got %v", loop.Children)
	}
}

func TestBuilder_Idempotent(t *testing.T) {
	b := New("idem")
	first := b.Add("A").Function("x").Entry()
	second := b.Add("A").Entry()

	if first != second {
		t.Error("Add should return the existing builder for a known ID")
	}

	g, err := b.Graph()
	if err != nil {
		t.Fatalf("Graph() failed: %v", err)
	}
	if len(g.Order) != 1 || len(g.Entries) != 1 {
		t.Errorf("Expected one state and one entry, got %v / %v", g.Order, g.Entries)
	}

	s := second.Build()
	if s.Value != "x" {
		t.Errorf("Expected the first configuration to be kept, got %q", s.Value)
	}
}

func TestBuilder_LoopDependence(t *testing.T) {
	b := New("loops")
	b.Add("L").Loop().Dependent(false)
	b.Add("L.X")

	g, err := b.Graph()
	if err != nil {
		t.Fatalf("Graph() failed: %v", err)
	}
	l, _ := g.State("L")
	if l.Dependent == nil || *l.Dependent {
		t.Errorf("Expected an explicit independent loop, got %v", l.Dependent)
	}
}
