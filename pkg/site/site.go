package site

import (
	"fmt"

	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/aretw0/humdrum/pkg/mvc"
	"github.com/aretw0/humdrum/pkg/registry"
)

// Site is a set of wired controllers built from a Definition.
type Site struct {
	def         *Definition
	controllers map[string]*domain.Controller
}

// Option configures Build.
type Option func(*buildSettings)

type buildSettings struct {
	hooks           mvc.Hooks
	maxForwardDepth *int
}

// WithHooks attaches hooks to every controller of the site.
func WithHooks(h mvc.Hooks) Option {
	return func(s *buildSettings) {
		s.hooks = h
	}
}

// WithMaxForwardDepth overrides the definition's max_forward_depth.
func WithMaxForwardDepth(n int) Option {
	return func(s *buildSettings) {
		s.maxForwardDepth = &n
	}
}

// Build wires the controllers of def, resolving process names through reg.
//
// All controllers are created before any view is built, so forward views may
// point at any controller of the site. Processes are added in the order they
// are listed.
func Build(def *Definition, reg *registry.Registry, opts ...Option) (*Site, error) {
	var s buildSettings
	for _, opt := range opts {
		opt(&s)
	}
	depth := def.MaxForwardDepth
	if s.maxForwardDepth != nil {
		depth = *s.maxForwardDepth
	}

	site := &Site{
		def:         def,
		controllers: make(map[string]*domain.Controller, len(def.Controllers)),
	}
	for _, name := range def.Names() {
		site.controllers[name] = domain.NewController(
			mvc.WithName(name),
			mvc.WithHooks(s.hooks),
			mvc.WithMaxForwardDepth(depth),
		)
	}

	for _, name := range def.Names() {
		spec := def.Controllers[name]
		c := site.controllers[name]

		for i, ps := range spec.Processes {
			p, err := reg.Build(ps.Name, ps.Args)
			if err != nil {
				return nil, fmt.Errorf("controller %s: process #%d: %w", name, i, err)
			}
			c.AddProcess(p)
		}

		for _, key := range spec.ViewKeys() {
			v, err := buildView(spec.Views[key], site.Controller)
			if err != nil {
				return nil, fmt.Errorf("controller %s: view %q: %w", name, key, err)
			}
			c.AddView(key, v)
		}

		if spec.Default != nil {
			v, err := buildView(*spec.Default, site.Controller)
			if err != nil {
				return nil, fmt.Errorf("controller %s: default view: %w", name, err)
			}
			c.SetDefaultView(v)
		}
	}

	if _, ok := site.controllers[def.EntryName()]; !ok {
		return nil, fmt.Errorf("%w: entry %q", ErrUnknownController, def.EntryName())
	}
	return site, nil
}

// Load reads and builds a site file.
func Load(path string, reg *registry.Registry, opts ...Option) (*Site, error) {
	def, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Build(def, reg, opts...)
}

// Controller returns the named controller.
func (s *Site) Controller(name string) (*domain.Controller, bool) {
	c, ok := s.controllers[name]
	return c, ok
}

// Entry returns the entry controller.
func (s *Site) Entry() *domain.Controller {
	return s.controllers[s.def.EntryName()]
}

// EntryName returns the name of the entry controller.
func (s *Site) EntryName() string {
	return s.def.EntryName()
}

// Names returns the controller names in sorted order.
func (s *Site) Names() []string {
	return s.def.Names()
}

// Definition returns the definition the site was built from.
func (s *Site) Definition() *Definition {
	return s.def
}
