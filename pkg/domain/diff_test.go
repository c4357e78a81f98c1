package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name   string
		before *Model
		after  *Model
		want   *ModelDiff
	}{
		{
			name:   "Initial Load",
			before: nil,
			after:  &Model{SessionID: "s1", Data: map[string]any{"a": 1}},
			want:   &ModelDiff{SessionID: "s1", Data: map[string]any{"a": 1}},
		},
		{
			name:   "No Changes",
			before: &Model{SessionID: "s1", Data: map[string]any{"a": 1}},
			after:  &Model{SessionID: "s1", Data: map[string]any{"a": 1}},
			want:   nil,
		},
		{
			name:   "Modified And Added",
			before: &Model{SessionID: "s1", Data: map[string]any{"a": 1}},
			after:  &Model{SessionID: "s1", Data: map[string]any{"a": 2, "b": "x"}},
			want:   &ModelDiff{SessionID: "s1", Data: map[string]any{"a": 2, "b": "x"}},
		},
		{
			name:   "Deleted",
			before: &Model{SessionID: "s1", Data: map[string]any{"a": 1, "b": 2}},
			after:  &Model{SessionID: "s1", Data: map[string]any{"a": 1}},
			want:   &ModelDiff{SessionID: "s1", Data: map[string]any{"b": nil}},
		},
		{
			name:   "Nested Values Compared Deeply",
			before: &Model{Data: map[string]any{"list": []any{1, 2}}},
			after:  &Model{Data: map[string]any{"list": []any{1, 2}}},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Diff(tt.before, tt.after))
		})
	}
}

func TestModelDiff_Keys(t *testing.T) {
	d := &ModelDiff{Data: map[string]any{"b": 1, "a": nil}}
	assert.Equal(t, []string{"a", "b"}, d.Keys())

	var empty *ModelDiff
	assert.Nil(t, empty.Keys())
}

func TestModel_Snapshot(t *testing.T) {
	m := NewModel("s1")
	m.Set("k", "v")
	m.Status = 302

	cp := m.Snapshot()
	cp.Set("k", "changed")

	v, _ := m.Get("k")
	assert.Equal(t, "v", v)
	assert.Equal(t, 302, cp.Status)
	assert.Equal(t, 200, NewModel("x").StatusCode())
}

func TestRequest_Params(t *testing.T) {
	r := NewRequest(SourceTest, nil)
	r.Set("b", "2")
	r.Set("a", "1")

	v, ok := r.Param("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	assert.Equal(t, []string{"a", "b"}, r.Keys())
	assert.NotNil(t, r.Out)
}

func TestSnapshot_NestedChangesAreDiffed(t *testing.T) {
	m := NewModel("s1")
	m.Set("profile", map[string]any{"name": "ada", "tags": []any{"a"}})
	m.Set("roles", []string{"admin"})

	before := m.Snapshot()
	m.Data["profile"].(map[string]any)["name"] = "grace"
	m.Data["roles"].([]string)[0] = "guest"

	assert.Equal(t, "ada", before.Data["profile"].(map[string]any)["name"])
	assert.Equal(t, []string{"admin"}, before.Data["roles"])

	diff := Diff(before, m)
	if assert.NotNil(t, diff) {
		assert.Equal(t, []string{"profile", "roles"}, diff.Keys())
	}

	m.Data["profile"].(map[string]any)["tags"].([]any)[0] = "b"
	assert.Equal(t, "a", before.Data["profile"].(map[string]any)["tags"].([]any)[0])
}
