package validator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/flowpaths/pkg/domain"
)

// ErrInvalidGraph is returned by Report.Err when the graph has error-level issues.
var ErrInvalidGraph = errors.New("invalid graph")

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Code identifies the kind of problem found.
type Code string

const (
	CodeDanglingTransition Code = "dangling-transition"
	CodeDanglingChild      Code = "dangling-child"
	CodeCrossScope         Code = "cross-scope-transition"
	CodeUnknownKind        Code = "unknown-kind"
	CodeLoopArity          Code = "loop-arity"
	CodeSharedChild        Code = "shared-child"
	CodeEmptyComposite     Code = "empty-composite"
	CodeUnreachable        Code = "unreachable"
	CodeNoEntry            Code = "no-entry"
)

// Issue is a single finding about one state.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	StateID  string   `json:"state_id,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.StateID == "" {
		return fmt.Sprintf("%s [%s]: %s", i.Severity, i.Code, i.Message)
	}
	return fmt.Sprintf("%s [%s] %s: %s", i.Severity, i.Code, i.StateID, i.Message)
}

// Report collects the issues found in a graph, errors first.
type Report struct {
	Issues []Issue `json:"issues"`
}

// Errors returns the error-level issues.
func (r Report) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the warning-level issues.
func (r Report) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r Report) filter(sev Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

// Err returns nil when the graph has no error-level issue.
func (r Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, len(errs))
	for i, issue := range errs {
		lines[i] = issue.String()
	}
	return fmt.Errorf("%w: found %d errors:\n- %s", ErrInvalidGraph, len(errs), strings.Join(lines, "\n- "))
}

type checker struct {
	g      *domain.Graph
	issues []Issue
}

func (c *checker) add(sev Severity, code Code, id, format string, args ...any) {
	c.issues = append(c.issues, Issue{Severity: sev, Code: code, StateID: id, Message: fmt.Sprintf(format, args...)})
}

// Validate checks the graph for problems the engine would otherwise
// paper over (dangling references become Unknown leaves, for instance).
func Validate(g *domain.Graph) Report {
	c := &checker{g: g}
	c.states()
	c.transitions()
	c.reachability()

	sort.SliceStable(c.issues, func(i, j int) bool {
		return c.issues[i].Severity == SeverityError && c.issues[j].Severity != SeverityError
	})
	return Report{Issues: c.issues}
}

func (c *checker) states() {
	for _, id := range c.g.Order {
		s := c.g.States[id]

		if !s.Kind.Valid() {
			c.add(SeverityError, CodeUnknownKind, id, "unsupported kind %q", s.Kind)
			continue
		}
		if !s.Kind.Composite() {
			continue
		}

		switch {
		case len(s.Children) == 0:
			c.add(SeverityWarning, CodeEmptyComposite, id, "%s has no children", s.Kind)
		case s.Kind == domain.KindLoop && len(s.Children) != 1:
			c.add(SeverityError, CodeLoopArity, id, "loop must have exactly one body, has %d", len(s.Children))
		}

		for _, child := range s.Children {
			cs, ok := c.g.State(child)
			if !ok {
				c.add(SeverityError, CodeDanglingChild, id, "child %q does not exist", child)
				continue
			}
			if cs.Parent != id {
				c.add(SeverityWarning, CodeSharedChild, child, "listed by %q but nested under %q", id, cs.Parent)
			}
		}
		for _, ref := range s.Initial {
			if _, ok := c.g.State(ref); !ok {
				c.add(SeverityError, CodeDanglingChild, id, "initial state %q does not exist", ref)
			}
		}
	}
}

func (c *checker) transitions() {
	for _, t := range c.g.Transitions {
		from, okFrom := c.g.State(t.From)
		to, okTo := c.g.State(t.To)
		switch {
		case !okFrom:
			c.add(SeverityError, CodeDanglingTransition, t.From, "transition source does not exist")
		case !okTo:
			c.add(SeverityError, CodeDanglingTransition, t.From, "transition target %q does not exist", t.To)
		case from.Parent != to.Parent:
			c.add(SeverityWarning, CodeCrossScope, t.From, "transition to %q leaves scope %q", t.To, from.Parent)
		}
	}
}

// reachability walks from the entries through transitions and into the initial
// states of every composite it reaches. Scope transitions include the implicit
// links of sequences without explicit ones.
func (c *checker) reachability() {
	root := c.g.RootScope()
	if len(root.Initial) == 0 {
		if len(c.g.Order) > 0 {
			c.add(SeverityError, CodeNoEntry, "", "graph has no entry state")
		}
		return
	}

	reached := make(map[string]bool, len(c.g.Order))
	implicit := make(map[string][]string)
	queue := append([]string(nil), root.Initial...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if reached[id] {
			continue
		}
		s, ok := c.g.State(id)
		if !ok {
			continue
		}
		reached[id] = true

		for _, t := range c.g.Successors(id) {
			queue = append(queue, t.To)
		}
		queue = append(queue, implicit[id]...)
		if s.Kind.Composite() {
			sc := c.g.ScopeOf(id)
			for _, t := range sc.Transitions {
				implicit[t.From] = append(implicit[t.From], t.To)
			}
			queue = append(queue, sc.Initial...)
		}
	}

	for _, id := range c.g.Order {
		if !reached[id] {
			c.add(SeverityWarning, CodeUnreachable, id, "not reachable from any entry")
		}
	}
}
