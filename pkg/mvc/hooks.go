package mvc

import (
	"context"
	"time"
)

// ProcessEvent describes one Process invocation.
type ProcessEvent struct {
	Controller string
	Index      int
	View       string // value returned by the process
	Matched    bool   // View names a registered view
	Duration   time.Duration
	Err        error
}

// RenderEvent describes one View render performed by a Controller.
type RenderEvent struct {
	Controller string
	View       string // empty for the default view
	Default    bool
	Duration   time.Duration
	Err        error
}

// ForwardEvent describes a forward from one Controller to another.
// Duration covers the whole nested dispatch.
type ForwardEvent struct {
	From     string
	To       string
	Depth    int
	Duration time.Duration
	Err      error
}

// Hooks are optional observation callbacks. A nil field is skipped.
// Hooks observe; they cannot change the outcome of a dispatch.
type Hooks struct {
	OnProcess func(context.Context, *ProcessEvent)
	OnRender  func(context.Context, *RenderEvent)
	OnForward func(context.Context, *ForwardEvent)
}
