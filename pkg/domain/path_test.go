package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// everyVariant builds one tree holding each element variant at least once.
func everyVariant() domain.Element {
	return domain.Sequence{Items: []domain.Element{
		domain.Atomic{StateID: "A", Action: domain.ActionKnative, Value: "fn-a", Continuation: []domain.Element{
			domain.Parallel{Branches: []domain.Element{
				domain.Sequence{Items: []domain.Element{domain.Atomic{StateID: "B", Action: domain.ActionDatabase}}, Loop: true},
				domain.Switch{Branches: []domain.Element{
					domain.Sequence{Items: []domain.Element{domain.LoopStop{StateID: "A"}}},
					domain.Sequence{Items: []domain.Element{domain.Unknown{Ref: "ghost"}}},
				}},
			}},
		}},
		domain.Loop{Body: domain.Sequence{Items: []domain.Element{domain.Atomic{StateID: "C", Action: domain.ActionEventSource, Value: "orders"}}}, MinIterations: 1},
	}}
}

func TestNewSequence_Collapses(t *testing.T) {
	inner := domain.Sequence{Items: []domain.Element{domain.Atomic{StateID: "X"}}}

	assert.Equal(t, inner, domain.NewSequence([]domain.Element{inner}, false))

	looped := domain.NewSequence([]domain.Element{inner}, true)
	assert.True(t, looped.Loop)
	assert.Equal(t, inner.Items, looped.Items)

	two := domain.NewSequence([]domain.Element{inner, domain.Atomic{StateID: "Y"}}, false)
	assert.Len(t, two.Items, 2)
}

func TestUnwrap(t *testing.T) {
	seq := domain.Sequence{Items: []domain.Element{domain.Atomic{StateID: "X"}, domain.Atomic{StateID: "Y"}}}
	assert.Len(t, domain.Unwrap(seq), 2)

	loop := domain.Sequence{Items: seq.Items, Loop: true}
	assert.Equal(t, []domain.Element{loop}, domain.Unwrap(loop))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{"fn-a", "B", "orders"}, domain.Keys(everyVariant()))
}

func TestAtomic_WithContinuationCopies(t *testing.T) {
	a := domain.Atomic{StateID: "A"}
	b := a.WithContinuation([]domain.Element{domain.Atomic{StateID: "B"}})

	assert.Empty(t, a.Continuation)
	assert.Len(t, b.Continuation, 1)
}

func TestCodec_RoundTrip(t *testing.T) {
	tree := everyVariant()

	data, err := json.Marshal(tree)
	require.NoError(t, err)

	decoded, err := domain.UnmarshalElement(data)
	require.NoError(t, err)

	if diff := cmp.Diff(tree, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCodec_WireShape(t *testing.T) {
	data, err := json.Marshal(domain.Loop{Body: domain.Sequence{Items: []domain.Element{domain.Atomic{StateID: "X"}}}})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "loop",
		"min_iterations": 0,
		"body": {"type": "sequence", "items": [{"type": "atomic", "state": "X"}]}
	}`, string(data))
}

func TestCodec_YAMLMatchesJSON(t *testing.T) {
	out, err := yaml.Marshal(domain.LoopStop{StateID: "A"})
	require.NoError(t, err)
	assert.Equal(t, "type: loop-stop\nstate: A\n", string(out))
}

func TestCodec_RejectsUnknownType(t *testing.T) {
	_, err := domain.UnmarshalElement([]byte(`{"type":"goto"}`))
	assert.ErrorIs(t, err, domain.ErrUnknownElementType)
}

func TestExtraction_JSON(t *testing.T) {
	x := domain.NewExtraction("orders")
	x.Add("fn-a",
		domain.Sequence{},
		domain.Sequence{Items: []domain.Element{domain.Atomic{StateID: "B"}}},
	)
	x.Fail("broken", assert.AnError)

	data, err := json.Marshal(x)
	require.NoError(t, err)

	var back domain.Extraction
	require.NoError(t, json.Unmarshal(data, &back))

	assert.Equal(t, x.ID, back.ID)
	assert.Equal(t, []string{"fn-a"}, back.ActionNames())
	require.Len(t, back.Actions["fn-a"].Outbound, 1)
	assert.Equal(t, domain.Sequence{Items: []domain.Element{domain.Atomic{StateID: "B"}}}, back.Actions["fn-a"].Outbound[0])
	assert.Equal(t, assert.AnError.Error(), back.Failures["broken"])
}

func TestWalk_PanicsOnForeignElement(t *testing.T) {
	assert.Panics(t, func() {
		domain.Walk(nil, func(domain.Element) bool { return true })
	})
}
