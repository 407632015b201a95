package workflow

import (
	"strings"

	"github.com/aretw0/flowpaths/pkg/domain"
)

// Document is the typed view of a workflow file. Other front ends (HCL) fill it
// directly and share Normalize.
type Document struct {
	Name        string      `mapstructure:"name"`
	Version     string      `mapstructure:"version"`
	Description string      `mapstructure:"description"`
	Entries     []string    `mapstructure:"entries"`
	States      []StateSpec `mapstructure:"states"`
}

// StateSpec is one declared state. Value holds the operation of an atomic state
// or the child references of a composite one.
type StateSpec struct {
	ID          string           `mapstructure:"id"`
	Type        string           `mapstructure:"type"`
	Value       []string         `mapstructure:"value"`
	Transition  []string         `mapstructure:"transition"`
	Transitions []TransitionSpec `mapstructure:"transitions"`
	Initial     []string         `mapstructure:"initial"`
	States      []StateSpec      `mapstructure:"states"`
	Dependent   *bool            `mapstructure:"dependent"`
	Description string           `mapstructure:"description"`
}

// TransitionSpec is a labeled transition.
type TransitionSpec struct {
	To    string `mapstructure:"to"`
	Label string `mapstructure:"label"`
}

// KindOf maps a document type onto a state kind and, for atomics, the action type.
// Any "function:<runtime>" type is an atomic function call.
func KindOf(typ string) (domain.Kind, domain.ActionType) {
	switch typ {
	case "sequence", "operation":
		return domain.KindSequence, ""
	case "parallel":
		return domain.KindParallel, ""
	case "switch":
		return domain.KindSwitch, ""
	case "loop", "foreach":
		return domain.KindLoop, ""
	case string(domain.ActionFunction), string(domain.ActionDatabase), string(domain.ActionEventSource):
		return domain.KindAtomic, domain.ActionType(typ)
	}
	if strings.HasPrefix(typ, string(domain.ActionFunction)+":") {
		return domain.KindAtomic, domain.ActionType(typ)
	}
	return domain.Kind(typ), ""
}
