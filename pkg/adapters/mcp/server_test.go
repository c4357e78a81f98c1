package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/aretw0/humdrum/pkg/adapters/memory"
	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/aretw0/humdrum/pkg/processes"
	"github.com/aretw0/humdrum/pkg/session"
	"github.com/aretw0/humdrum/pkg/site"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const siteYAML = `
controllers:
  main:
    processes:
      - {name: require_param, args: {param: name, view: ask}}
      - {name: count, args: {key: calls}}
    views:
      ask: {type: status, code: 400, body: "name?"}
    default: {type: text, body: "hi ${param.name}"}
`

type testApp struct {
	site *site.Site
	mgr  *session.Manager
}

func (a *testApp) Dispatch(ctx context.Context, name, sessionID string, req *domain.Request) (*domain.Model, error) {
	c, ok := a.site.Controller(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", site.ErrUnknownController, name)
	}
	return a.mgr.Dispatch(ctx, sessionID, c, req)
}

func (a *testApp) Controllers() []string        { return a.site.Names() }
func (a *testApp) Definition() *site.Definition { return a.site.Definition() }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	def, err := site.Parse([]byte(siteYAML))
	require.NoError(t, err)
	s, err := site.Build(def, processes.NewRegistry())
	require.NoError(t, err)
	return NewServer(&testApp{site: s, mgr: session.NewManager(memory.NewStore())}, "test")
}

func TestHandleDispatch(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	resp, err := s.handleDispatch(ctx, mcp.CallToolRequest{}, map[string]any{
		"controller": "main",
		"params":     `{"name": "ana"}`,
		"session_id": "s1",
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, "hi ana", resp.Output)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, 1, resp.Model["calls"])

	resp, err = s.handleDispatch(ctx, mcp.CallToolRequest{}, map[string]any{
		"controller": "main",
		"params":     map[string]any{"name": "ana"},
		"session_id": "s1",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Model["calls"])
}

func TestHandleDispatch_NewSessionAndStatus(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.handleDispatch(context.Background(), mcp.CallToolRequest{}, map[string]any{"controller": "main"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, 400, resp.Status)
	assert.Equal(t, "name?", resp.Output)
}

func TestHandleDispatch_Errors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing controller", map[string]any{}, "controller is required"},
		{"unknown controller", map[string]any{"controller": "nope"}, "unknown controller"},
		{"bad params", map[string]any{"controller": "main", "params": "[1]"}, "params must be a JSON object"},
		{"bad params type", map[string]any{"controller": "main", "params": 3.0}, "params must be a JSON object"},
		{"unsafe params", map[string]any{"controller": "main", "params": map[string]any{"name": "\xff"}}, "input rejected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.handleDispatch(ctx, mcp.CallToolRequest{}, tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestHandleListControllers(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleListControllers(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.JSONEq(t, `["main"]`, text.Text)
}

func TestHandleReadSite(t *testing.T) {
	s := newTestServer(t)

	contents, err := s.handleReadSite(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, SiteURI, text.URI)

	var def site.Definition
	require.NoError(t, json.Unmarshal([]byte(text.Text), &def))
	assert.Equal(t, []string{"main"}, def.Names())
}

func TestDecodeParams(t *testing.T) {
	got, err := decodeParams(`{"a": "x", "n": 2, "b": true, "z": null}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "x", "n": "2", "b": "true", "z": ""}, got)

	got, err = decodeParams(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
