package dsl

import "github.com/aretw0/humdrum/pkg/site"

// ControllerBuilder provides a fluent API for configuring a controller.
type ControllerBuilder struct {
	name    string
	builder *Builder
}

func (c *ControllerBuilder) update(fn func(*site.ControllerSpec)) *ControllerBuilder {
	spec := c.builder.def.Controllers[c.name]
	fn(&spec)
	c.builder.def.Controllers[c.name] = spec
	return c
}

// Describe sets the human readable description.
func (c *ControllerBuilder) Describe(text string) *ControllerBuilder {
	return c.update(func(s *site.ControllerSpec) { s.Description = text })
}

// Process appends a registered process to the chain.
func (c *ControllerBuilder) Process(name string, args Args) *ControllerBuilder {
	return c.update(func(s *site.ControllerSpec) {
		s.Processes = append(s.Processes, site.ProcessSpec{Name: name, Args: args})
	})
}

// Always appends a process that always selects view.
func (c *ControllerBuilder) Always(view string) *ControllerBuilder {
	return c.Process("always", Args{"view": view})
}

// View registers a view under key.
func (c *ControllerBuilder) View(key, viewType string, opts Args) *ControllerBuilder {
	return c.update(func(s *site.ControllerSpec) {
		s.Views[key] = site.ViewSpec{Type: viewType, Options: opts}
	})
}

// Text registers a text view under key.
func (c *ControllerBuilder) Text(key, body string) *ControllerBuilder {
	return c.View(key, site.TypeText, Args{"body": body})
}

// Forward registers a view under key that hands the request to target.
func (c *ControllerBuilder) Forward(key, target string) *ControllerBuilder {
	return c.View(key, site.TypeForward, Args{"target": target})
}

// Default sets the view rendered when no process decides.
func (c *ControllerBuilder) Default(viewType string, opts Args) *ControllerBuilder {
	return c.update(func(s *site.ControllerSpec) {
		s.Default = &site.ViewSpec{Type: viewType, Options: opts}
	})
}

// DefaultForward makes the default view forward to target.
func (c *ControllerBuilder) DefaultForward(target string) *ControllerBuilder {
	return c.Default(site.TypeForward, Args{"target": target})
}

// Controller switches to another controller of the same site.
func (c *ControllerBuilder) Controller(name string) *ControllerBuilder {
	return c.builder.Controller(name)
}

// Site returns the owning builder.
func (c *ControllerBuilder) Site() *Builder {
	return c.builder
}
