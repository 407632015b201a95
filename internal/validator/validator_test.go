package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/aretw0/flowpaths/pkg/dsl"
)

func codes(issues []Issue) map[Code]string {
	out := make(map[Code]string)
	for _, i := range issues {
		out[i.Code] = i.StateID
	}
	return out
}

func TestValidate_Valid(t *testing.T) {
	b := dsl.New("ok")
	b.Add("E").Sequence().Entry()
	b.Add("E.a").Function("fetch")
	b.Add("E.b").Database("orders")
	b.Add("E.L").Loop()
	b.Add("E.L.body").Function("poll")

	g, err := b.Graph()
	if err != nil {
		t.Fatalf("Graph() failed: %v", err)
	}

	report := Validate(g)
	if len(report.Issues) != 0 {
		t.Errorf("expected no issues, got %v", report.Issues)
	}
	if err := report.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}

func TestValidate_Broken(t *testing.T) {
	g := domain.NewGraph("broken")
	states := []domain.State{
		{ID: "start", Kind: domain.KindAtomic},
		{ID: "L", Kind: domain.KindLoop, Children: []string{"x", "y"}},
		{ID: "x", Kind: domain.KindAtomic, Parent: "L"},
		{ID: "y", Kind: domain.KindAtomic, Parent: "L"},
		{ID: "timer", Kind: "sleep"},
		{ID: "P", Kind: domain.KindParallel, Children: []string{"ghost-child"}},
		{ID: "orphan", Kind: domain.KindAtomic},
	}
	for _, s := range states {
		if err := g.AddState(s); err != nil {
			t.Fatalf("AddState(%s): %v", s.ID, err)
		}
	}
	g.Entries = []string{"start"}
	g.AddTransition("start", "L", "")
	g.AddTransition("start", "ghost", "")
	g.AddTransition("start", "x", "")
	g.AddTransition("L", "timer", "")

	report := Validate(g)
	got := codes(report.Issues)

	wants := map[Code]string{
		CodeLoopArity:          "L",
		CodeUnknownKind:        "timer",
		CodeDanglingChild:      "P",
		CodeDanglingTransition: "start",
		CodeCrossScope:         "start",
		CodeUnreachable:        "orphan",
	}
	for code, id := range wants {
		if got[code] == "" {
			t.Errorf("expected issue %s, got %v", code, report.Issues)
			continue
		}
		if code != CodeUnreachable && got[code] != id {
			t.Errorf("issue %s on %q, want %q", code, got[code], id)
		}
	}

	if report.Issues[0].Severity != SeverityError {
		t.Errorf("errors must be listed first, got %v", report.Issues[0])
	}

	err := report.Err()
	if !errors.Is(err, ErrInvalidGraph) {
		t.Fatalf("Err() = %v, want ErrInvalidGraph", err)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("expected the dangling target in %q", err.Error())
	}
}

func TestValidate_ImplicitSequenceLinks(t *testing.T) {
	b := dsl.New("seq")
	b.Add("S").Sequence("a", "b", "c").Entry()
	b.Add("a").Function("one")
	b.Add("b").Function("two")
	b.Add("c").Function("three")

	g, err := b.Graph()
	if err != nil {
		t.Fatalf("Graph() failed: %v", err)
	}
	for _, issue := range Validate(g).Issues {
		if issue.Code == CodeUnreachable {
			t.Errorf("%s should be reached through the implicit sequence links", issue.StateID)
		}
	}
}

func TestValidate_NoEntry(t *testing.T) {
	g := domain.NewGraph("cycle")
	_ = g.AddState(domain.State{ID: "a", Kind: domain.KindAtomic})
	_ = g.AddState(domain.State{ID: "b", Kind: domain.KindAtomic})
	g.AddTransition("a", "b", "")
	g.AddTransition("b", "a", "")

	report := Validate(g)
	if _, ok := codes(report.Issues)[CodeNoEntry]; !ok {
		t.Errorf("expected %s, got %v", CodeNoEntry, report.Issues)
	}
}
