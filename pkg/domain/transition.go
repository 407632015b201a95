package domain

// Transition is an edge between two states of the same scope.
type Transition struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`

	// Label is the optional trigger name. It does not affect analysis.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// IsSelf reports whether the transition loops back to its source.
// Self transitions model loop repetition and are ignored by chain search.
func (t Transition) IsSelf() bool {
	return t.From == t.To
}
