package analysis

import (
	"fmt"

	"github.com/aretw0/flowpaths/pkg/domain"
)

// PruneToTarget returns the prefix of path leading to the first occurrence of
// target (matched by action key or state ID), walking depth-first, left to
// right. The matching node and everything after it are dropped. The boolean
// is false when the path never reaches target.
func PruneToTarget(path domain.Element, target string) ([]domain.Element, bool) {
	return PruneToOccurrence(path, target, 0)
}

// PruneAfterTarget returns the continuation recorded on the first occurrence of
// target, with sequence continuations spliced. It is empty for terminal actions.
func PruneAfterTarget(path domain.Element, target string) ([]domain.Element, bool) {
	return PruneAfterOccurrence(path, target, 0)
}

// PruneToOccurrence is PruneToTarget for the n-th occurrence (zero based).
func PruneToOccurrence(path domain.Element, target string, n int) ([]domain.Element, bool) {
	m := &matcher{target: target, skip: n}
	return m.before(domain.Unwrap(path))
}

// PruneAfterOccurrence is PruneAfterTarget for the n-th occurrence (zero based).
func PruneAfterOccurrence(path domain.Element, target string, n int) ([]domain.Element, bool) {
	m := &matcher{target: target, skip: n}
	return m.after(domain.Unwrap(path))
}

// Occurrences counts the atomic nodes of path matching target.
func Occurrences(path domain.Element, target string) int {
	n := 0
	domain.Walk(path, func(e domain.Element) bool {
		if a, ok := e.(domain.Atomic); ok && matches(a, target) {
			n++
		}
		return true
	})
	return n
}

func matches(a domain.Atomic, target string) bool {
	return a.Key() == target || a.StateID == target
}

// matcher finds the occurrence of target left after skipping the first skip matches.
type matcher struct {
	target string
	skip   int
}

func (m *matcher) hit(a domain.Atomic) bool {
	if !matches(a, m.target) {
		return false
	}
	if m.skip > 0 {
		m.skip--
		return false
	}
	return true
}

func (m *matcher) before(items []domain.Element) ([]domain.Element, bool) {
	prefix := make([]domain.Element, 0, len(items))
	for _, e := range items {
		kept, found := m.beforeIn(e)
		if found {
			if kept != nil {
				prefix = append(prefix, kept)
			}
			return prefix, true
		}
		prefix = append(prefix, e)
	}
	return nil, false
}

// beforeIn returns what remains of e once everything from the match onwards is
// cut. A nil element with found set means nothing of e precedes the match.
func (m *matcher) beforeIn(e domain.Element) (domain.Element, bool) {
	switch v := e.(type) {
	case domain.Atomic:
		if m.hit(v) {
			return nil, true
		}
		p, ok := m.before(v.Continuation)
		if !ok {
			return nil, false
		}
		if len(p) == 0 {
			return v.WithContinuation(nil), true
		}
		return v.WithContinuation(p), true
	case domain.Sequence:
		p, ok := m.before(v.Items)
		if !ok {
			return nil, false
		}
		if len(p) == 0 {
			return nil, true
		}
		return domain.NewSequence(p, v.Loop), true
	case domain.Parallel:
		kept, ok := m.branch(v.Branches)
		if !ok || kept == nil {
			return nil, ok
		}
		return domain.Parallel{Branches: []domain.Element{kept}}, true
	case domain.Switch:
		kept, ok := m.branch(v.Branches)
		if !ok || kept == nil {
			return nil, ok
		}
		return domain.Switch{Branches: []domain.Element{kept}}, true
	case domain.Loop:
		if v.Body == nil {
			return nil, false
		}
		kept, ok := m.beforeIn(v.Body)
		if !ok || kept == nil {
			return nil, ok
		}
		return domain.Loop{Body: kept, MinIterations: v.MinIterations}, true
	case domain.LoopStop, domain.Unknown:
		return nil, false
	default:
		panic(fmt.Sprintf("analysis: unexpected path element %T", e))
	}
}

// branch keeps only the branch holding the match.
func (m *matcher) branch(branches []domain.Element) (domain.Element, bool) {
	for _, b := range branches {
		if kept, ok := m.beforeIn(b); ok {
			return kept, true
		}
	}
	return nil, false
}

func (m *matcher) after(items []domain.Element) ([]domain.Element, bool) {
	for _, e := range items {
		if out, ok := m.afterIn(e); ok {
			return out, true
		}
	}
	return nil, false
}

func (m *matcher) afterIn(e domain.Element) ([]domain.Element, bool) {
	switch v := e.(type) {
	case domain.Atomic:
		if m.hit(v) {
			out := []domain.Element{}
			for _, c := range v.Continuation {
				out = append(out, domain.Unwrap(c)...)
			}
			return out, true
		}
		return m.after(v.Continuation)
	case domain.Sequence:
		return m.after(v.Items)
	case domain.Parallel:
		return m.after(v.Branches)
	case domain.Switch:
		return m.after(v.Branches)
	case domain.Loop:
		if v.Body == nil {
			return nil, false
		}
		return m.afterIn(v.Body)
	case domain.LoopStop, domain.Unknown:
		return nil, false
	default:
		panic(fmt.Sprintf("analysis: unexpected path element %T", e))
	}
}
