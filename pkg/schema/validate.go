package schema

import (
	"fmt"
	"sort"
)

// Field describes one key of a validated object.
type Field struct {
	Type     Type
	Required bool
}

// Schema is a map of field names to their expected shape.
// Example: {"id": Required(String()), "transition": Optional(OneOf(String(), Slice(String())))}
type Schema map[string]Field

// Required declares a mandatory field.
func Required(t Type) Field { return Field{Type: t, Required: true} }

// Optional declares a field that may be absent.
func Optional(t Type) Field { return Field{Type: t} }

// Validate checks if data conforms to the schema.
// Keys unknown to the schema are rejected. Every failure is collected into an
// *AggregateError; prefix is prepended to the reported keys.
func Validate(schema Schema, data map[string]any, prefix string) error {
	var errs []error

	for _, key := range sortedKeys(schema) {
		field := schema[key]
		value, exists := data[key]
		if !exists || value == nil {
			if field.Required {
				errs = append(errs, &ValidationError{Key: prefix + key, Reason: "required"})
			}
			continue
		}
		if err := field.Type.Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: prefix + key, Reason: err.Error(), Value: value})
		}
	}

	for _, key := range sortedKeys(data) {
		if _, known := schema[key]; !known {
			errs = append(errs, &ValidationError{Key: prefix + key, Reason: "unknown field"})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// Merge flattens the failures of several validations into one error, or nil.
func Merge(errs ...error) error {
	var all []error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if nested := ValidationErrors(err); nested != nil {
			all = append(all, nested...)
			continue
		}
		all = append(all, err)
	}
	if len(all) == 0 {
		return nil
	}
	return &AggregateError{Errors: all}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// indexed formats the prefix of the i-th entry of a list field.
func indexed(prefix, field string, i int) string {
	return fmt.Sprintf("%s%s[%d].", prefix, field, i)
}
