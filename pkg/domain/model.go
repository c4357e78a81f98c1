package domain

import "net/http"

// Model is the per-session domain state shared by every step of a dispatch.
type Model struct {
	SessionID string `json:"session_id"`

	// Data holds application values. It is what stores persist.
	Data map[string]any `json:"data"`

	// Status and Location are response hints set by views such as Redirect.
	// Front controllers that have no notion of them ignore them.
	Status   int    `json:"-"`
	Location string `json:"-"`
}

// NewModel creates an empty model for a session.
func NewModel(sessionID string) *Model {
	return &Model{
		SessionID: sessionID,
		Data:      make(map[string]any),
	}
}

// Get returns a value from Data.
func (m *Model) Get(key string) (any, bool) {
	v, ok := m.Data[key]
	return v, ok
}

// Set stores a value in Data.
func (m *Model) Set(key string, value any) {
	if m.Data == nil {
		m.Data = make(map[string]any)
	}
	m.Data[key] = value
}

// Delete removes a value from Data.
func (m *Model) Delete(key string) {
	delete(m.Data, key)
}

// StatusCode returns Status, or 200 when no view set one.
func (m *Model) StatusCode() int {
	if m.Status == 0 {
		return http.StatusOK
	}
	return m.Status
}

// Snapshot returns a copy of the model. Nested maps and slices in Data are
// copied too, so in-place changes to them show up in a Diff.
func (m *Model) Snapshot() *Model {
	if m == nil {
		return nil
	}
	cp := *m
	cp.Data = copyMap(m.Data)
	return &cp
}

func copyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
