package analysis

import (
	"slices"

	"github.com/aretw0/flowpaths/pkg/domain"
)

// budget is the maximum number of alternatives one step may produce. Zero disables it.
type budget int

func (b budget) check(stateID string, n int) error {
	if b > 0 && n > int(b) {
		return &domain.PathExplosionError{StateID: stateID, Count: n, Limit: int(b)}
	}
	return nil
}

// chain links b after a. An atomic a takes b as its continuation (chained onto
// the last continuation element when one exists); anything else yields a Sequence.
func chain(a, b domain.Element) domain.Element {
	switch v := a.(type) {
	case domain.Atomic:
		if n := len(v.Continuation); n > 0 {
			cont := slices.Clone(v.Continuation)
			cont[n-1] = chain(cont[n-1], b)
			return v.WithContinuation(cont)
		}
		return v.WithContinuation([]domain.Element{b})
	case domain.Sequence:
		if !v.Loop {
			items := append(slices.Clone(v.Items), domain.Unwrap(b)...)
			return domain.NewSequence(items, false)
		}
	}
	return domain.NewSequence(append([]domain.Element{a}, domain.Unwrap(b)...), false)
}

// crossProduct returns one combination per entry of the Cartesian product of the
// slots, keeping slot order. The product size is checked before anything is built.
func crossProduct(slots [][]domain.Element, b budget, stateID string) ([][]domain.Element, error) {
	total := 1
	for _, slot := range slots {
		total *= len(slot)
		if err := b.check(stateID, total); err != nil {
			return nil, err
		}
	}
	return extend([][]domain.Element{{}}, slots...), nil
}

// extend appends every alternative of each slot to every partial combination.
func extend(partials [][]domain.Element, slots ...[]domain.Element) [][]domain.Element {
	out := partials
	for _, slot := range slots {
		next := make([][]domain.Element, 0, len(out)*len(slot))
		for _, prefix := range out {
			for _, alt := range slot {
				combo := make([]domain.Element, len(prefix), len(prefix)+1)
				copy(combo, prefix)
				next = append(next, append(combo, alt))
			}
		}
		out = next
	}
	return out
}

// union concatenates alternative lists.
func union(b budget, stateID string, lists ...[]domain.Element) ([]domain.Element, error) {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	if err := b.check(stateID, n); err != nil {
		return nil, err
	}
	out := make([]domain.Element, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out, nil
}
