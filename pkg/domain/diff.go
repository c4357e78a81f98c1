package domain

import (
	"reflect"
	"sort"
)

// ModelDiff represents the changes a dispatch made to a model.
// It is designed to be serialized to JSON for logs and partial updates.
type ModelDiff struct {
	SessionID string `json:"session_id"`

	// Data contains only changed, added or deleted keys.
	// For deletions, the key is present with a nil value.
	Data map[string]any `json:"data,omitempty"`
}

// Diff calculates the difference between before and after.
// If before is nil, every key of after is reported. It returns nil when
// nothing changed.
func Diff(before, after *Model) *ModelDiff {
	if after == nil {
		return nil
	}

	delta := diffData(before, after)
	if len(delta) == 0 {
		return nil
	}
	return &ModelDiff{SessionID: after.SessionID, Data: delta}
}

// Keys returns the changed keys in sorted order.
func (d *ModelDiff) Keys() []string {
	if d == nil {
		return nil
	}
	keys := make([]string, 0, len(d.Data))
	for k := range d.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func diffData(before, after *Model) map[string]any {
	delta := make(map[string]any)

	if before == nil {
		for k, v := range after.Data {
			delta[k] = v
		}
		return delta
	}

	for k, newVal := range after.Data {
		oldVal, exists := before.Data[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}

	for k := range before.Data {
		if _, exists := after.Data[k]; !exists {
			delta[k] = nil
		}
	}

	return delta
}
