package hcl_test

import (
	"context"
	"testing"

	"github.com/aretw0/flowpaths/internal/analysis"
	"github.com/aretw0/flowpaths/pkg/adapters/hcl"
	"github.com/aretw0/flowpaths/pkg/domain"
	contract "github.com/aretw0/flowpaths/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHCLLoader_Contract(t *testing.T) {
	contract.GraphLoaderContractTest(t, hcl.New("testdata/checkout.hcl"),
		[]string{"E", "E.F1", "E.S", "E.S.F2", "E.S.F3"},
		[]string{"E"},
	)
}

func TestHCLLoader_MatchesScenario(t *testing.T) {
	g, err := hcl.New("testdata/checkout.hcl").Load(context.Background())
	require.NoError(t, err)

	paths, err := analysis.NewEngine(g).FullPaths(context.Background())
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, []string{"F1", "F2"}, domain.Keys(paths[0]))
	assert.Equal(t, []string{"F1", "F3"}, domain.Keys(paths[1]))
}

func TestHCLLoader_FlatReferencesAndBlocks(t *testing.T) {
	g, err := hcl.New("testdata/orders.hcl").Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "orders", g.Name, "name falls back to the file name")

	persist, _ := g.State("persist")
	assert.Equal(t, "main", persist.Parent)
	assert.Equal(t, "orders", persist.Value)

	assert.Equal(t, []domain.Transition{{From: "persist", To: "audit", Label: "stored"}}, g.Transitions)

	audit, _ := g.State("audit")
	assert.Equal(t, domain.KindLoop, audit.Kind)
	require.NotNil(t, audit.Dependent)
	assert.False(t, *audit.Dependent)
	assert.Equal(t, []string{"audit.emit"}, audit.Children)
}

func TestHCLLoader_Diagnostics(t *testing.T) {
	_, err := hcl.FromBytes("broken.hcl", []byte(`state "function" {`)).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.hcl")

	_, err = hcl.FromBytes("bad.hcl", []byte("state \"function\" \"a\" {\n  retries = 3\n}\n")).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}
