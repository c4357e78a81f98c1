package dsl

import (
	"fmt"

	"github.com/aretw0/humdrum/pkg/registry"
	"github.com/aretw0/humdrum/pkg/site"
)

// Args holds process arguments and view options.
type Args = map[string]any

// Builder manages the site construction.
type Builder struct {
	def site.Definition
}

// New creates an empty site builder.
func New() *Builder {
	return &Builder{
		def: site.Definition{Controllers: make(map[string]site.ControllerSpec)},
	}
}

// Entry names the controller dispatched when none is given.
func (b *Builder) Entry(name string) *Builder {
	b.def.Entry = name
	return b
}

// MaxForwardDepth guards every controller of the site against deep forwards.
func (b *Builder) MaxForwardDepth(n int) *Builder {
	b.def.MaxForwardDepth = n
	return b
}

// Controller returns the builder of the named controller, creating it on first use.
func (b *Builder) Controller(name string) *ControllerBuilder {
	if _, ok := b.def.Controllers[name]; !ok {
		b.def.Controllers[name] = site.ControllerSpec{Views: make(map[string]site.ViewSpec)}
	}
	return &ControllerBuilder{name: name, builder: b}
}

// Definition returns the built definition. The builder keeps ownership of
// nested maps; build a fresh one per definition you intend to change.
func (b *Builder) Definition() *site.Definition {
	def := b.def
	return &def
}

// Build wires the definition into a site.
func (b *Builder) Build(reg *registry.Registry, opts ...site.Option) (*site.Site, error) {
	s, err := site.Build(b.Definition(), reg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build site: %w", err)
	}
	return s, nil
}
