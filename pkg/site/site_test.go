package site_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/aretw0/humdrum/pkg/mvc"
	"github.com/aretw0/humdrum/pkg/processes"
	"github.com/aretw0/humdrum/pkg/site"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dispatch(t *testing.T, c *domain.Controller, m *domain.Model, params map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	req := domain.NewRequest(domain.SourceTest, &buf)
	for k, v := range params {
		req.Set(k, v)
	}
	require.NoError(t, c.HandleRequest(context.Background(), req, m))
	return buf.String()
}

func TestLoad_YAML(t *testing.T) {
	s, err := site.Load("testdata/site.yaml", processes.NewRegistry())
	require.NoError(t, err)

	assert.Equal(t, []string{"auth", "main"}, s.Names())
	assert.Equal(t, "main", s.EntryName())

	main := s.Entry()
	m := domain.NewModel("s1")

	// No user yet: forwarded to auth, which renders its status view.
	assert.Equal(t, "who are you?", dispatch(t, main, m, nil))
	assert.Equal(t, 401, m.Status)

	m.Status = 0
	assert.Equal(t, "hello ada (1)", dispatch(t, main, m, map[string]string{"user": "ada"}))
	assert.Equal(t, "hello ada (2)", dispatch(t, main, m, nil))

	out := dispatch(t, main, m, map[string]string{"format": "json"})
	assert.JSONEq(t, `{"user":"ada","visits":3}`, out)
}

func TestLoad_JSON(t *testing.T) {
	reg := processes.NewRegistry()
	reg.RegisterProcess("noop", mvc.Never[*domain.Request, *domain.Model]())

	s, err := site.Load("testdata/site.json", reg)
	require.NoError(t, err)
	assert.Equal(t, "hi", dispatch(t, s.Entry(), domain.NewModel(""), nil))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ``},
		{"no controllers", `entry: main`},
		{"nameless process", "controllers:\n  main:\n    processes:\n      - args: {a: 1}\n"},
		{"typeless view", "controllers:\n  main:\n    views:\n      x: {body: hi}\n"},
		{"typeless default", "controllers:\n  main:\n    default: {body: hi}\n"},
		{"negative depth", "max_forward_depth: -1\ncontrollers:\n  main: {}\n"},
		{"not yaml", "controllers: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := site.Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, site.ErrInvalidDefinition)
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	reg := processes.NewRegistry()
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"unknown forward", "controllers:\n  main:\n    default: {type: forward, target: ghost}\n", site.ErrUnknownController},
		{"unknown entry", "entry: home\ncontrollers:\n  main: {}\n", site.ErrUnknownController},
		{"unknown type", "controllers:\n  main:\n    default: {type: html}\n", site.ErrUnknownViewType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := site.Parse([]byte(tt.yaml))
			require.NoError(t, err)
			_, err = site.Build(def, reg)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	def, err := site.Parse([]byte("controllers:\n  main:\n    processes: [nope]\n"))
	require.NoError(t, err)
	_, err = site.Build(def, reg)
	assert.ErrorContains(t, err, "nope")

	def, err = site.Parse([]byte("controllers:\n  main:\n    default: {type: text, bdy: typo}\n"))
	require.NoError(t, err)
	_, err = site.Build(def, reg)
	assert.Error(t, err, "unknown view options are rejected")
}

func TestBuild_ForwardCycleWithDepthGuard(t *testing.T) {
	yml := `
max_forward_depth: 3
controllers:
  main:
    default: {type: forward, target: other}
  other:
    default: {type: forward, target: main}
`
	def, err := site.Parse([]byte(yml))
	require.NoError(t, err)

	s, err := site.Build(def, processes.NewRegistry())
	require.NoError(t, err, "cycles are legal to build")

	err = s.Entry().HandleRequest(context.Background(), domain.NewRequest(domain.SourceTest, nil), domain.NewModel(""))
	assert.ErrorIs(t, err, mvc.ErrForwardDepthExceeded)
}

func TestBuild_Hooks(t *testing.T) {
	def, err := site.Parse([]byte("controllers:\n  main:\n    default: {type: nop}\n"))
	require.NoError(t, err)

	var rendered []string
	s, err := site.Build(def, processes.NewRegistry(), site.WithHooks(mvc.Hooks{
		OnRender: func(ctx context.Context, e *mvc.RenderEvent) { rendered = append(rendered, e.Controller) },
	}))
	require.NoError(t, err)

	dispatch(t, s.Entry(), domain.NewModel(""), nil)
	assert.Equal(t, []string{"main"}, rendered)
}

func TestViewSpec_Target(t *testing.T) {
	def, err := site.Parse([]byte("controllers:\n  main:\n    views:\n      f: {type: forward, target: x}\n      t: {type: text, target: x}\n"))
	require.NoError(t, err)
	assert.Equal(t, "x", def.Controllers["main"].Views["f"].Target())
	assert.Equal(t, "", def.Controllers["main"].Views["t"].Target())
}

func TestDefinition_JSONRoundTrip(t *testing.T) {
	def, err := site.LoadFile("testdata/site.yaml")
	require.NoError(t, err)

	data, err := json.Marshal(def)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"login":{"target":"auth","type":"forward"}`)

	back, err := site.ParseJSON(data)
	require.NoError(t, err)
	assert.Equal(t, def.Controllers["main"].Views["login"], back.Controllers["main"].Views["login"])
	assert.Equal(t, def.Controllers["main"].Default.Type, back.Controllers["main"].Default.Type)
	assert.Equal(t, def.Names(), back.Names())
}
