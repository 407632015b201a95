package analysis

import (
	"context"

	"github.com/aretw0/flowpaths/pkg/domain"
)

// trail is the immutable set of states on the current expansion path.
// Pushing shares the tail, so sibling branches never see each other's history.
type trail struct {
	id     string
	parent *trail
}

func (t *trail) has(id string) bool {
	for n := t; n != nil; n = n.parent {
		if n.id == id {
			return true
		}
	}
	return false
}

func (t *trail) push(id string) *trail {
	return &trail{id: id, parent: t}
}

// expander turns states into path alternatives for one query.
type expander struct {
	ctx context.Context
	eng *Engine
	b   budget
}

func (e *Engine) newExpander(ctx context.Context) *expander {
	return &expander{ctx: ctx, eng: e, b: e.budget()}
}

// expand returns every path alternative starting at id. With follow set, the
// successors of id are chained after each alternative; otherwise only the
// state's own structure is expanded.
func (x *expander) expand(id string, seen *trail, follow bool) ([]domain.Element, error) {
	if err := x.ctx.Err(); err != nil {
		return nil, err
	}
	if seen.has(id) {
		x.eng.onCycle(x.ctx, id)
		return []domain.Element{domain.LoopStop{StateID: id}}, nil
	}
	s, ok := x.eng.graph.State(id)
	if !ok {
		x.eng.onUnknown(x.ctx, id)
		return []domain.Element{domain.Unknown{Ref: id}}, nil
	}

	next := seen.push(id)

	var (
		body []domain.Element
		err  error
	)
	switch s.Kind {
	case domain.KindAtomic:
		body = []domain.Element{domain.Atomic{StateID: s.ID, Action: s.Action, Value: s.Value}}
	case domain.KindSequence:
		body, err = x.sequence(s, next)
	case domain.KindParallel:
		body, err = x.parallel(s, next)
	case domain.KindSwitch:
		body, err = x.choice(s, next)
	case domain.KindLoop:
		body, err = x.loop(s, next, 0)
	default:
		return nil, &domain.UnsupportedKindError{StateID: s.ID, Kind: s.Kind}
	}
	if err != nil {
		return nil, err
	}

	if follow {
		if body, err = x.follow(s.ID, body, next); err != nil {
			return nil, err
		}
	}

	x.eng.onExpand(x.ctx, s, len(body))
	return body, nil
}

// follow chains the union of all successor alternatives after each body alternative.
func (x *expander) follow(id string, body []domain.Element, next *trail) ([]domain.Element, error) {
	var tails []domain.Element
	for _, t := range x.eng.graph.Successors(id) {
		alts, err := x.expand(t.To, next, true)
		if err != nil {
			return nil, err
		}
		if tails, err = union(x.b, id, tails, alts); err != nil {
			return nil, err
		}
	}
	if len(tails) == 0 {
		return body, nil
	}
	if err := x.b.check(id, len(body)*len(tails)); err != nil {
		return nil, err
	}

	out := make([]domain.Element, 0, len(body)*len(tails))
	for _, b := range body {
		for _, tail := range tails {
			out = append(out, chain(b, tail))
		}
	}
	return out, nil
}

// heads expands the starting children of a composite and cross-multiplies them.
func (x *expander) heads(s *domain.State, next *trail) ([][]domain.Element, error) {
	heads := x.eng.graph.Heads(s.ID)
	slots := make([][]domain.Element, 0, len(heads))
	for _, h := range heads {
		alts, err := x.expand(h, next, true)
		if err != nil {
			return nil, err
		}
		slots = append(slots, alts)
	}
	return crossProduct(slots, x.b, s.ID)
}

func (x *expander) sequence(s *domain.State, next *trail) ([]domain.Element, error) {
	combos, err := x.heads(s, next)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Element, 0, len(combos))
	for _, c := range combos {
		out = append(out, domain.NewSequence(c, false))
	}
	return out, nil
}

// parallel emits one Parallel per branch combination. Nested parallels are
// spliced into the outer one.
func (x *expander) parallel(s *domain.State, next *trail) ([]domain.Element, error) {
	combos, err := x.heads(s, next)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Element, 0, len(combos))
	for _, c := range combos {
		branches := make([]domain.Element, 0, len(c))
		for _, el := range c {
			if p, ok := el.(domain.Parallel); ok {
				branches = append(branches, p.Branches...)
				continue
			}
			branches = append(branches, el)
		}
		out = append(out, domain.Parallel{Branches: branches})
	}
	return out, nil
}

// choice surfaces every branch alternative of a switch. In embed mode the
// alternatives stay grouped under a single Switch element.
func (x *expander) choice(s *domain.State, next *trail) ([]domain.Element, error) {
	var alts []domain.Element
	for _, h := range x.eng.graph.Heads(s.ID) {
		branch, err := x.expand(h, next, true)
		if err != nil {
			return nil, err
		}
		wrapped := make([]domain.Element, len(branch))
		for i, b := range branch {
			wrapped[i] = domain.NewSequence([]domain.Element{b}, false)
		}
		if alts, err = union(x.b, s.ID, alts, wrapped); err != nil {
			return nil, err
		}
	}

	if x.eng.switchMode == domain.SwitchEmbed {
		return []domain.Element{domain.Switch{Branches: alts}}, nil
	}
	return alts, nil
}

// loop expands the body once. Dependent loops are wrapped in a Loop element;
// independent ones become a Parallel holding one loop-flagged Sequence.
func (x *expander) loop(s *domain.State, next *trail, minIterations int) ([]domain.Element, error) {
	combos, err := x.heads(s, next)
	if err != nil {
		return nil, err
	}

	dependent := x.eng.isDependent(s)
	out := make([]domain.Element, 0, len(combos))
	for _, c := range combos {
		body := domain.NewSequence(c, false)
		if dependent {
			out = append(out, domain.Loop{Body: body, MinIterations: minIterations})
			continue
		}
		out = append(out, domain.Parallel{Branches: []domain.Element{
			domain.Sequence{Items: body.Items, Loop: true},
		}})
	}
	return out, nil
}
