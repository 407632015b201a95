package plantuml_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/flowpaths/internal/analysis"
	"github.com/aretw0/flowpaths/pkg/adapters/plantuml"
	"github.com/aretw0/flowpaths/pkg/domain"
	contract "github.com/aretw0/flowpaths/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"entry-event":      "entry_event",
		`"Close Ticket"`:   "Close_Ticket",
		"  spaced  ":       "spaced",
		"3ds-check":        "_3ds_check",
		"already_valid_id": "already_valid_id",
	}
	for in, want := range tests {
		assert.Equal(t, want, plantuml.Sanitize(in), in)
	}
}

func TestPlantUMLLoader_Contract(t *testing.T) {
	contract.GraphLoaderContractTest(t, plantuml.New("testdata/authorization.puml"),
		[]string{"entry_event", "authorization", "authorization_decide", "verify_transaction", "transaction", "result"},
		[]string{"entry_event"},
	)
}

func TestPlantUMLLoader_Authorization(t *testing.T) {
	g, err := plantuml.New("testdata/authorization.puml").Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "authorization", g.Name)

	entry, _ := g.State("entry_event")
	assert.Equal(t, domain.ActionEventSource, entry.Action)
	decide, _ := g.State("authorization_decide")
	assert.Equal(t, domain.ActionType(""), decide.Action)

	var labels []string
	for _, tr := range g.Successors("authorization_decide") {
		labels = append(labels, tr.Label)
	}
	assert.Equal(t, []string{`${ ."do-verification" == true }`, "default"}, labels)

	paths, err := analysis.NewEngine(g).PathsTo(context.Background(), "result")
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}

func TestPlantUMLLoader_Composite(t *testing.T) {
	g, err := plantuml.New("testdata/fanout.puml").Load(context.Background())
	require.NoError(t, err)

	dispatch, ok := g.State("Dispatch")
	require.True(t, ok)
	assert.Equal(t, domain.KindParallel, dispatch.Kind)
	assert.Equal(t, []string{"Dispatch.email", "Dispatch.sms"}, dispatch.Children)
	assert.Equal(t, []string{"Dispatch.email", "Dispatch.sms"}, dispatch.Initial)

	paths, err := analysis.NewEngine(g).FullPaths(context.Background())
	require.NoError(t, err)
	require.Len(t, paths, 1)

	items := domain.Unwrap(paths[0])
	require.Len(t, items, 2)
	assert.IsType(t, domain.Parallel{}, items[0])
	assert.Equal(t, domain.Atomic{StateID: "Close_Ticket", Value: "Close_Ticket"}, items[1])
}

func TestPlantUMLLoader_Errors(t *testing.T) {
	tests := map[string]string{
		"unclosed":   "state A {\n  [*] --> b\n",
		"stray":      "}\n",
		"stereotype": "state A <<timer>> {\n}\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := plantuml.Parse(strings.NewReader(src), name)
			assert.Error(t, err)
		})
	}
}
