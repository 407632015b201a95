package schema

import "fmt"

var stringOrList = OneOf(String(), Slice(String()))

// DocumentSchema is the top level of a workflow document.
var DocumentSchema = Schema{
	"name":        Optional(String()),
	"version":     Optional(OneOf(String(), Int())),
	"description": Optional(String()),
	"entries":     Optional(stringOrList),
	"states":      Required(Slice(Custom("state", isObject))),
}

// StateSchema is one entry of a states list, at any nesting depth.
// The type is left open so that unsupported kinds surface during analysis
// instead of failing the whole document.
var StateSchema = Schema{
	"id":          Required(String()),
	"type":        Required(String()),
	"value":       Optional(stringOrList),
	"transition":  Optional(stringOrList),
	"transitions": Optional(Slice(Custom("transition", isObject))),
	"initial":     Optional(stringOrList),
	"states":      Optional(Slice(Custom("state", isObject))),
	"dependent":   Optional(Bool()),
	"description": Optional(String()),
}

// TransitionSchema is one entry of a transitions list.
var TransitionSchema = Schema{
	"to":    Required(String()),
	"label": Optional(String()),
}

// ValidateDocument checks a decoded workflow document, nested states included.
// All failures are reported at once, keyed by their path in the document.
func ValidateDocument(doc map[string]any) error {
	if err := Validate(DocumentSchema, doc, ""); err != nil {
		return err
	}
	return validateStates(doc["states"], "")
}

func validateStates(raw any, prefix string) error {
	list, _ := raw.([]any)
	var errs []error
	for i, item := range list {
		state, ok := item.(map[string]any)
		if !ok {
			continue
		}
		at := indexed(prefix, "states", i)
		errs = append(errs, Validate(StateSchema, state, at))

		if ts, ok := state["transitions"].([]any); ok {
			for j, t := range ts {
				if obj, ok := t.(map[string]any); ok {
					errs = append(errs, Validate(TransitionSchema, obj, indexed(at, "transitions", j)))
				}
			}
		}
		if nested, ok := state["states"]; ok {
			errs = append(errs, validateStates(nested, at))
		}
	}
	return Merge(errs...)
}

func isObject(v any) error {
	if _, ok := v.(map[string]any); !ok {
		return fmt.Errorf("expected object, got %T", v)
	}
	return nil
}
