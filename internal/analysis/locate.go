package analysis

import (
	"slices"

	"github.com/aretw0/flowpaths/pkg/domain"
)

// pathsToState searches backwards from target over the scope's transitions and
// returns every chain, entry first, that starts at an initial state of the scope.
// Self transitions are ignored and a state already on the chain is not revisited.
func pathsToState(sc domain.Scope, target string) [][]string {
	var (
		out    [][]string
		path   []string
		onPath = map[string]bool{}
	)

	var walk func(id string)
	walk = func(id string) {
		path = append(path, id)
		onPath[id] = true
		defer func() {
			path = path[:len(path)-1]
			delete(onPath, id)
		}()

		if sc.IsInitial(id) {
			chain := slices.Clone(path)
			slices.Reverse(chain)
			out = append(out, chain)
		}

		var sources []string
		for _, t := range sc.Incoming(id) {
			if !onPath[t.From] && !slices.Contains(sources, t.From) {
				sources = append(sources, t.From)
			}
		}
		for _, src := range sources {
			walk(src)
		}
	}

	if sc.Has(target) {
		walk(target)
	}
	return out
}

// locate resolves target inside sc, descending into every member that
// contains it. Each level only reasons about its own scope.
func (e *Engine) locate(sc domain.Scope, target string, owners *trail) []domain.Route {
	var routes []domain.Route
	for _, m := range sc.Members {
		direct := m == target
		if !direct && (owners.has(m) || !e.graph.Contains(m, target)) {
			continue
		}

		chains := pathsToState(sc, m)
		if len(chains) == 0 {
			continue
		}

		var inner []domain.Route
		if !direct {
			inner = e.locate(e.graph.ScopeOf(m), target, owners.push(m))
			if len(inner) == 0 {
				continue
			}
		}

		for _, c := range chains {
			hop := domain.Hop{Scope: sc.Owner, Chain: c}
			if direct {
				routes = append(routes, domain.Route{Target: target, Hops: []domain.Hop{hop}})
				continue
			}
			for _, r := range inner {
				hops := make([]domain.Hop, 0, len(r.Hops)+1)
				hops = append(hops, hop)
				hops = append(hops, r.Hops...)
				routes = append(routes, domain.Route{Target: target, Hops: hops})
			}
		}
	}
	return routes
}
