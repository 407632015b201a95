package domain

import "testing"

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   Element
		want string
	}{
		{"empty sequence", Sequence{}, "ε"},
		{"chained atomics", Atomic{StateID: "F1", Value: "charge", Continuation: []Element{Atomic{StateID: "F2"}}}, "charge -> F2"},
		{"switch", Sequence{Items: []Element{
			Atomic{StateID: "a"},
			Switch{Branches: []Element{Atomic{StateID: "b"}, Atomic{StateID: "c"}}},
		}}, "a -> switch(b | c)"},
		{"parallel", Parallel{Branches: []Element{Atomic{StateID: "x"}, Atomic{StateID: "y"}}}, "par(x | y)"},
		{"dependent loop", Loop{Body: Atomic{StateID: "x"}, MinIterations: 1}, "loop+(x)"},
		{"optional loop", Loop{Body: Atomic{StateID: "x"}}, "loop(x)"},
		{"independent pass", Sequence{Items: []Element{Atomic{StateID: "x"}}, Loop: true}, "(x)*"},
		{"markers", Sequence{Items: []Element{LoopStop{StateID: "a"}, Unknown{Ref: "ghost"}}}, "@a -> ?ghost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.in); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}
