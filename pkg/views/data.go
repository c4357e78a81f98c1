package views

import (
	"context"
	"encoding/json"

	"github.com/aretw0/humdrum/pkg/domain"
	"gopkg.in/yaml.v3"
)

// selectData returns the requested keys of the model, or all of Data.
func selectData(m *domain.Model, keys []string) map[string]any {
	if len(keys) == 0 {
		return m.Data
	}
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := m.Get(k); ok {
			out[k] = v
		}
	}
	return out
}

// JSON encodes model data.
type JSON struct {
	Keys   []string
	Indent bool
}

// Render implements domain.View.
func (v *JSON) Render(ctx context.Context, _ *domain.Controller, req *domain.Request, m *domain.Model) error {
	enc := json.NewEncoder(req.Out)
	if v.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(selectData(m, v.Keys))
}

// YAML encodes model data.
type YAML struct {
	Keys []string
}

// Render implements domain.View.
func (v *YAML) Render(ctx context.Context, _ *domain.Controller, req *domain.Request, m *domain.Model) error {
	enc := yaml.NewEncoder(req.Out)
	enc.SetIndent(2)
	if err := enc.Encode(selectData(m, v.Keys)); err != nil {
		return err
	}
	return enc.Close()
}
