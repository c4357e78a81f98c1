package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/humdrum/pkg/domain"
)

// ErrUnknownProcess is returned when a process name has no registered factory.
var ErrUnknownProcess = errors.New("unknown process")

// Factory builds a Process from the arguments given in a site definition.
type Factory func(args map[string]any) (domain.Process, error)

// Registry maps process names to factories. Site definitions refer to
// processes by these names.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory to the registry.
// If a factory with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = fn
}

// RegisterProcess registers a Process that takes no arguments.
func (r *Registry) RegisterProcess(name string, p domain.Process) {
	r.Register(name, func(args map[string]any) (domain.Process, error) {
		if len(args) > 0 {
			return nil, fmt.Errorf("process %q takes no arguments", name)
		}
		return p, nil
	})
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build looks up a factory by name and runs it.
func (r *Registry) Build(name string, args map[string]any) (domain.Process, error) {
	r.mu.RLock()
	fn, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProcess, name)
	}

	p, err := fn(args)
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", name, err)
	}
	return p, nil
}
