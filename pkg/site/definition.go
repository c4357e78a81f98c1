package site

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidDefinition is returned for structurally broken site files.
	ErrInvalidDefinition = errors.New("invalid site definition")
	// ErrUnknownController is returned when a name does not match a controller.
	ErrUnknownController = errors.New("unknown controller")
	// ErrUnknownViewType is returned for a view spec with an unsupported type.
	ErrUnknownViewType = errors.New("unknown view type")
)

// DefaultEntry is the entry controller when a definition names none.
const DefaultEntry = "main"

// Definition is the parsed form of a site file.
type Definition struct {
	Entry           string                    `yaml:"entry" json:"entry"`
	MaxForwardDepth int                       `yaml:"max_forward_depth" json:"max_forward_depth"`
	Controllers     map[string]ControllerSpec `yaml:"controllers" json:"controllers"`
}

// ControllerSpec describes one controller.
type ControllerSpec struct {
	Description string              `yaml:"description" json:"description"`
	Processes   []ProcessSpec       `yaml:"processes" json:"processes"`
	Views       map[string]ViewSpec `yaml:"views" json:"views"`
	Default     *ViewSpec           `yaml:"default" json:"default"`
}

// ProcessSpec names a registered process and its arguments.
type ProcessSpec struct {
	Name string         `yaml:"name" json:"name"`
	Args map[string]any `yaml:"args" json:"args"`
}

// UnmarshalYAML accepts both "name" and {name: ..., args: ...}.
func (p *ProcessSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		p.Name = value.Value
		return nil
	}
	type plain ProcessSpec
	return value.Decode((*plain)(p))
}

// UnmarshalJSON accepts both "name" and {"name": ..., "args": ...}.
func (p *ProcessSpec) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		p.Name = name
		return nil
	}
	type plain ProcessSpec
	return json.Unmarshal(data, (*plain)(p))
}

// ViewSpec describes a view. Options holds every key besides type and is
// decoded according to Type when the site is built.
type ViewSpec struct {
	Type    string         `yaml:"type" json:"type"`
	Options map[string]any `yaml:",inline" json:"-"`
}

// UnmarshalJSON mirrors the inline YAML layout.
func (v *ViewSpec) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t, _ := raw["type"].(string)
	delete(raw, "type")
	v.Type = t
	v.Options = raw
	return nil
}

// MarshalJSON writes type and options side by side.
func (v ViewSpec) MarshalJSON() ([]byte, error) {
	raw := make(map[string]any, len(v.Options)+1)
	for k, val := range v.Options {
		raw[k] = val
	}
	raw["type"] = v.Type
	return json.Marshal(raw)
}

// Target returns the forward target of a forward view, or "".
func (v ViewSpec) Target() string {
	if v.Type != TypeForward {
		return ""
	}
	t, _ := v.Options["target"].(string)
	return t
}

// EntryName returns Entry or DefaultEntry.
func (d *Definition) EntryName() string {
	if d.Entry == "" {
		return DefaultEntry
	}
	return d.Entry
}

// Names returns the controller names in sorted order.
func (d *Definition) Names() []string {
	names := make([]string, 0, len(d.Controllers))
	for name := range d.Controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ViewKeys returns the named view keys of a controller in sorted order.
func (c ControllerSpec) ViewKeys() []string {
	keys := make([]string, 0, len(c.Views))
	for k := range c.Views {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Parse decodes a YAML site definition. JSON is valid YAML and parses too.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if err := def.check(); err != nil {
		return nil, err
	}
	return &def, nil
}

// ParseJSON decodes a JSON site definition.
func ParseJSON(data []byte) (*Definition, error) {
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if err := def.check(); err != nil {
		return nil, err
	}
	return &def, nil
}

// LoadFile reads a site definition, choosing the decoder by extension.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read site file: %w", err)
	}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return ParseJSON(data)
	}
	return Parse(data)
}

// check rejects definitions that cannot be built at all.
// Semantic problems (unknown targets, cycles) are left to the validator.
func (d *Definition) check() error {
	if len(d.Controllers) == 0 {
		return fmt.Errorf("%w: no controllers", ErrInvalidDefinition)
	}
	if d.MaxForwardDepth < 0 {
		return fmt.Errorf("%w: max_forward_depth must not be negative", ErrInvalidDefinition)
	}
	for _, name := range d.Names() {
		spec := d.Controllers[name]
		for i, p := range spec.Processes {
			if p.Name == "" {
				return fmt.Errorf("%w: controller %s: process #%d has no name", ErrInvalidDefinition, name, i)
			}
		}
		for key, v := range spec.Views {
			if v.Type == "" {
				return fmt.Errorf("%w: controller %s: view %q has no type", ErrInvalidDefinition, name, key)
			}
		}
		if spec.Default != nil && spec.Default.Type == "" {
			return fmt.Errorf("%w: controller %s: default view has no type", ErrInvalidDefinition, name)
		}
	}
	return nil
}
