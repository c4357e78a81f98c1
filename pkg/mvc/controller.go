package mvc

import (
	"context"
	"time"
)

// Controller runs a chain of Processes and renders the View the chain selects.
//
// A Controller is not safe for concurrent registration. Registering views or
// processes while HandleRequest is running on the same Controller is a race;
// concurrent HandleRequest calls on a fully wired Controller are fine as long
// as the Processes and Views themselves allow it.
type Controller[R, M any] struct {
	name        string
	views       map[string]View[R, M]
	defaultView View[R, M]
	processes   []Process[R, M]

	maxForwardDepth int
	hooks           Hooks
}

// Option configures a Controller.
type Option func(*settings)

type settings struct {
	name            string
	maxForwardDepth int
	hooks           Hooks
}

// WithName labels the Controller in hook events and diagnostics.
func WithName(name string) Option {
	return func(s *settings) {
		s.name = name
	}
}

// WithMaxForwardDepth makes HandleRequest fail with ErrForwardDepthExceeded
// when the Controller is entered through more than n nested forwards.
// Zero (the default) means unlimited.
func WithMaxForwardDepth(n int) Option {
	return func(s *settings) {
		s.maxForwardDepth = n
	}
}

// WithHooks registers observation callbacks.
func WithHooks(h Hooks) Option {
	return func(s *settings) {
		s.hooks = h
	}
}

// NewController creates an empty Controller.
func NewController[R, M any](opts ...Option) *Controller[R, M] {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return &Controller[R, M]{
		name:            s.name,
		views:           make(map[string]View[R, M]),
		maxForwardDepth: s.maxForwardDepth,
		hooks:           s.hooks,
	}
}

// Name returns the label given with WithName.
func (c *Controller[R, M]) Name() string {
	return c.name
}

// AddView registers view under key, replacing any view already there.
func (c *Controller[R, M]) AddView(key string, view View[R, M]) {
	c.views[key] = view
}

// SetDefaultView sets the view rendered when no process decides.
func (c *Controller[R, M]) SetDefaultView(view View[R, M]) {
	c.defaultView = view
}

// AddProcess appends p to the chain.
func (c *Controller[R, M]) AddProcess(p Process[R, M]) {
	c.processes = append(c.processes, p)
}

// HasView reports whether a non-nil view is registered under key. A key
// registered with a nil view is a lookup miss.
func (c *Controller[R, M]) HasView(key string) bool {
	v, ok := c.views[key]
	return ok && v != nil
}

// HasDefaultView reports whether a non-nil default view is set.
func (c *Controller[R, M]) HasDefaultView() bool {
	return c.defaultView != nil
}

// View returns the view registered under key.
func (c *Controller[R, M]) View(key string) (View[R, M], bool) {
	v, ok := c.views[key]
	return v, ok
}

// DefaultView returns the default view, or nil.
func (c *Controller[R, M]) DefaultView() View[R, M] {
	return c.defaultView
}

// Processes returns a copy of the chain in dispatch order.
func (c *Controller[R, M]) Processes() []Process[R, M] {
	out := make([]Process[R, M], len(c.processes))
	copy(out, c.processes)
	return out
}

// HandleRequest runs one dispatch cycle.
//
// Processes are called in insertion order. The first one returning the key of
// a registered view ends the chain and that view is rendered. If none does, the
// default view is rendered if set. Otherwise nothing happens and nil is
// returned. Errors from processes and views are returned as is.
func (c *Controller[R, M]) HandleRequest(ctx context.Context, req R, model M) error {
	if c.maxForwardDepth > 0 && ForwardDepth(ctx) > c.maxForwardDepth {
		return ErrForwardDepthExceeded
	}

	for i, p := range c.processes {
		key, err := c.callProcess(ctx, i, p, req, model)
		if err != nil {
			return err
		}
		if c.HasView(key) {
			return c.renderView(ctx, key, req, model)
		}
	}

	if c.HasDefaultView() {
		return c.renderDefaultView(ctx, req, model)
	}
	return nil
}

func (c *Controller[R, M]) callProcess(ctx context.Context, i int, p Process[R, M], req R, model M) (string, error) {
	if c.hooks.OnProcess == nil {
		return p.CallBack(ctx, c, req, model)
	}

	start := time.Now()
	key, err := p.CallBack(ctx, c, req, model)
	c.hooks.OnProcess(ctx, &ProcessEvent{
		Controller: c.name,
		Index:      i,
		View:       key,
		Matched:    err == nil && c.HasView(key),
		Duration:   time.Since(start),
		Err:        err,
	})
	return key, err
}

func (c *Controller[R, M]) renderView(ctx context.Context, key string, req R, model M) error {
	return c.render(ctx, c.views[key], key, false, req, model)
}

func (c *Controller[R, M]) renderDefaultView(ctx context.Context, req R, model M) error {
	return c.render(ctx, c.defaultView, "", true, req, model)
}

func (c *Controller[R, M]) render(ctx context.Context, v View[R, M], key string, isDefault bool, req R, model M) error {
	if c.hooks.OnRender == nil {
		return v.Render(ctx, c, req, model)
	}

	start := time.Now()
	err := v.Render(ctx, c, req, model)
	c.hooks.OnRender(ctx, &RenderEvent{
		Controller: c.name,
		View:       key,
		Default:    isDefault,
		Duration:   time.Since(start),
		Err:        err,
	})
	return err
}
