package domain

import "fmt"

// SwitchMode selects how switch states appear in expanded paths.
type SwitchMode string

const (
	// SwitchUnion surfaces every branch as a distinct alternative path.
	SwitchUnion SwitchMode = "union"
	// SwitchEmbed keeps the branches together under one Switch element.
	SwitchEmbed SwitchMode = "embed"
)

// ParseSwitchMode validates a switch mode name. Empty means SwitchUnion.
func ParseSwitchMode(s string) (SwitchMode, error) {
	switch SwitchMode(s) {
	case "", SwitchUnion:
		return SwitchUnion, nil
	case SwitchEmbed:
		return SwitchEmbed, nil
	}
	return "", fmt.Errorf("invalid switch mode %q (expected %q or %q)", s, SwitchUnion, SwitchEmbed)
}

// OccurrencePolicy decides which occurrences of a repeated action are reported.
type OccurrencePolicy string

const (
	// FirstOccurrence reports only the first depth-first match in each path.
	FirstOccurrence OccurrencePolicy = "first"
	// AllOccurrences reports every match, in traversal order.
	AllOccurrences OccurrencePolicy = "all"
)

// ParseOccurrencePolicy validates a policy name. Empty means FirstOccurrence.
func ParseOccurrencePolicy(s string) (OccurrencePolicy, error) {
	switch OccurrencePolicy(s) {
	case "", FirstOccurrence:
		return FirstOccurrence, nil
	case AllOccurrences:
		return AllOccurrences, nil
	}
	return "", fmt.Errorf("invalid occurrence policy %q (expected %q or %q)", s, FirstOccurrence, AllOccurrences)
}

// Hop is the chain of states crossed inside one scope, entry first.
// Its last state is either the target or the composite the route descends into.
type Hop struct {
	Scope string   `json:"scope,omitempty" yaml:"scope,omitempty"`
	Chain []string `json:"chain" yaml:"chain"`
}

// Route locates a target: one hop per nesting level, outermost first.
type Route struct {
	Target string `json:"target" yaml:"target"`
	Hops   []Hop  `json:"hops" yaml:"hops"`
}

// States flattens the route, target included.
func (r Route) States() []string {
	var out []string
	for _, h := range r.Hops {
		out = append(out, h.Chain...)
	}
	return out
}

// Chain lists the states walked from the entry before reaching the target's
// immediate parent. The parent and the target themselves are left out.
func (r Route) Chain() []string {
	out := []string{}
	last := len(r.Hops) - 1
	for i, h := range r.Hops {
		chain := h.Chain
		if (i == last || i == last-1) && len(chain) > 0 {
			chain = chain[:len(chain)-1]
		}
		out = append(out, chain...)
	}
	return out
}

// TargetReport is the outcome of one per-target query.
type TargetReport struct {
	Target string    `json:"target" yaml:"target"`
	Routes []Route   `json:"routes,omitempty" yaml:"routes,omitempty"`
	Paths  []Element `json:"paths,omitempty" yaml:"paths,omitempty"`
	Err    error     `json:"-" yaml:"-"`
}
