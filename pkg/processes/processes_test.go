package processes_test

import (
	"context"
	"testing"

	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/aretw0/humdrum/pkg/processes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, p domain.Process, req *domain.Request, m *domain.Model) string {
	t.Helper()
	v, err := p.CallBack(context.Background(), nil, req, m)
	require.NoError(t, err)
	return v
}

func TestBuiltins(t *testing.T) {
	req := domain.NewRequest(domain.SourceTest, nil)
	req.Set("user", "ada")
	req.Set("empty", "")
	m := domain.NewModel("s1")

	assert.Equal(t, "v", call(t, processes.Always("v"), req, m))

	assert.Equal(t, "", call(t, processes.RequireParam("user", "login"), req, m))
	assert.Equal(t, "login", call(t, processes.RequireParam("empty", "login"), req, m))
	assert.Equal(t, "login", call(t, processes.RequireParam("missing", "login"), req, m))

	assert.Equal(t, "admin", call(t, processes.ParamEquals("user", "ada", "admin"), req, m))
	assert.Equal(t, "", call(t, processes.ParamEquals("user", "bob", "admin"), req, m))

	assert.Equal(t, "login", call(t, processes.RequireSession("user", "login"), req, m))
	assert.Equal(t, "", call(t, processes.CopyParam("user", ""), req, m))
	assert.Equal(t, "ada", m.Data["user"])
	assert.Equal(t, "", call(t, processes.RequireSession("user", "login"), req, m))

	call(t, processes.Set("theme", "dark"), req, m)
	assert.Equal(t, "dark", m.Data["theme"])
	call(t, processes.Unset("theme"), req, m)
	assert.NotContains(t, m.Data, "theme")
}

func TestCount(t *testing.T) {
	m := domain.NewModel("s1")
	req := domain.NewRequest(domain.SourceTest, nil)
	p := processes.Count("visits")

	call(t, p, req, m)
	call(t, p, req, m)
	assert.Equal(t, 2, m.Data["visits"])

	// Values decoded from JSON stores come back as float64.
	m.Set("visits", float64(7))
	call(t, p, req, m)
	assert.Equal(t, 8, m.Data["visits"])

	m.Set("visits", []string{"nope"})
	_, err := p.CallBack(context.Background(), nil, req, m)
	assert.Error(t, err)
}

func TestRegister(t *testing.T) {
	r := processes.NewRegistry()

	for _, name := range []string{"always", "require_param", "param_equals", "require_session", "set", "unset", "copy_param", "count"} {
		assert.True(t, r.Has(name), name)
	}

	p, err := r.Build("param_equals", map[string]any{"param": "n", "value": 3, "view": "three"})
	require.NoError(t, err, "weakly typed input turns 3 into \"3\"")
	req := domain.NewRequest(domain.SourceTest, nil)
	req.Set("n", "3")
	assert.Equal(t, "three", call(t, p, req, domain.NewModel("")))

	_, err = r.Build("always", map[string]any{})
	assert.Error(t, err, "view is required")

	_, err = r.Build("always", map[string]any{"view": "x", "typo": true})
	assert.Error(t, err, "unknown arguments are rejected")

	p, err = r.Build("set", map[string]any{"key": "k", "value": []any{1, 2}})
	require.NoError(t, err)
	m := domain.NewModel("")
	call(t, p, req, m)
	assert.Equal(t, []any{1, 2}, m.Data["k"])
}
