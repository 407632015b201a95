package schema

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_Success(t *testing.T) {
	s := Schema{
		"id":         Required(String()),
		"dependent":  Optional(Bool()),
		"transition": Optional(OneOf(String(), Slice(String()))),
	}

	data := map[string]any{
		"id":         "charge",
		"transition": []any{"a", "b"},
	}

	if err := Validate(s, data, ""); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_CollectsEveryFailure(t *testing.T) {
	s := Schema{
		"id":   Required(String()),
		"type": Required(String()),
	}

	data := map[string]any{
		"type":  42,
		"extra": true,
	}

	err := Validate(s, data, "states[0].")
	if err == nil {
		t.Fatal("Validate() should fail")
	}

	errs := ValidationErrors(err)
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(errs), err)
	}

	keys := make([]string, len(errs))
	for i, e := range errs {
		var ve *ValidationError
		if !errors.As(e, &ve) {
			t.Fatalf("error %d is %T, want *ValidationError", i, e)
		}
		keys[i] = ve.Key + ":" + ve.Reason
	}

	want := []string{"states[0].id:required", "states[0].type:expected string, got int", "states[0].extra:unknown field"}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("error %d = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestValidate_NullOptional(t *testing.T) {
	s := Schema{"transition": Optional(String())}
	if err := Validate(s, map[string]any{"transition": nil}, ""); err != nil {
		t.Errorf("null optional field should pass: %v", err)
	}
}

func TestValidateDocument(t *testing.T) {
	doc := map[string]any{
		"name":    "checkout",
		"entries": []any{"E"},
		"states": []any{
			map[string]any{
				"id":   "E",
				"type": "sequence",
				"states": []any{
					map[string]any{"id": "F1", "type": "function", "value": "charge", "transition": "F2"},
					map[string]any{"id": "F2", "type": "database"},
				},
			},
		},
	}

	if err := ValidateDocument(doc); err != nil {
		t.Fatalf("ValidateDocument() = %v", err)
	}

	t.Run("Nested failures are located", func(t *testing.T) {
		bad := map[string]any{
			"states": []any{
				map[string]any{
					"id":   "E",
					"type": "sequence",
					"states": []any{
						map[string]any{"type": "function"},
					},
					"transitions": []any{map[string]any{"label": "x"}},
				},
			},
		}

		err := ValidateDocument(bad)
		if err == nil {
			t.Fatal("expected errors")
		}
		msg := err.Error()
		for _, want := range []string{`states[0].states[0].id`, `states[0].transitions[0].to`} {
			if !strings.Contains(msg, want) {
				t.Errorf("error %q does not mention %s", msg, want)
			}
		}
	})

	t.Run("States are required", func(t *testing.T) {
		if err := ValidateDocument(map[string]any{"name": "empty"}); err == nil {
			t.Error("expected a missing states error")
		}
	})
}
