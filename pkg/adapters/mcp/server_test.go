package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/flowpaths"
	"github.com/aretw0/flowpaths/internal/validator"
	"github.com/aretw0/flowpaths/pkg/dsl"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	b := dsl.New("checkout")
	b.Add("E").Sequence().Entry()
	b.Add("E.F1").Knative("charge").Go("E.S")
	b.Add("E.S").Switch()
	b.Add("E.S.F2").Database("orders")
	b.Add("E.S.F3").EventSource("refunds")
	loader, err := b.Build()
	require.NoError(t, err)

	x, err := flowpaths.New(context.Background(), "", flowpaths.WithLoader(loader))
	require.NoError(t, err)
	return NewServer(x)
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestExtractTool(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	res, err := s.handleExtract(ctx, call(nil))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var ext struct {
		Workflow string                     `json:"workflow"`
		Actions  map[string]json.RawMessage `json:"actions"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &ext))
	assert.Equal(t, "checkout", ext.Workflow)
	assert.Len(t, ext.Actions, 3)

	res, err = s.handleExtract(ctx, call(map[string]any{"action": "orders"}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"action":"orders"`)

	res, err = s.handleExtract(ctx, call(map[string]any{"action": "ghost"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestPathsToTool(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	res, err := s.handlePathsTo(ctx, call(map[string]any{"target": "refunds"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var resp struct {
		Target string            `json:"target"`
		Routes []json.RawMessage `json:"routes"`
		Paths  []json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &resp))
	assert.Equal(t, "refunds", resp.Target)
	assert.Len(t, resp.Routes, 1)
	assert.Len(t, resp.Paths, 1)

	res, err = s.handlePathsTo(ctx, call(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError, "target is required")

	res, err = s.handlePathsTo(ctx, call(map[string]any{"target": "ghost"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestMermaidTool(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	res, err := s.handleMermaid(ctx, call(nil))
	require.NoError(t, err)
	out := text(t, res)
	assert.True(t, strings.HasPrefix(out, "flowchart TD"))
	assert.NotContains(t, out, "classDef target")

	res, err = s.handleMermaid(ctx, call(map[string]any{"target": "orders"}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "classDef target")

	res, err = s.handleMermaid(ctx, call(map[string]any{"target": "ghost"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestValidateTool(t *testing.T) {
	s := newServer(t)
	res, err := s.handleValidate(context.Background(), call(nil))
	require.NoError(t, err)
	var report validator.Report
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &report))
	assert.Empty(t, report.Errors())
}
