package mvc

import (
	"context"
	"time"
)

type depthKey struct{}

// ForwardDepth reports how many forwards the current dispatch went through.
func ForwardDepth(ctx context.Context) int {
	d, _ := ctx.Value(depthKey{}).(int)
	return d
}

func withForwardDepth(ctx context.Context, depth int) context.Context {
	return context.WithValue(ctx, depthKey{}, depth)
}

// ForwardView is a pseudo-view that hands the request and model over to
// another Controller instead of producing output.
type ForwardView[R, M any] struct {
	target *Controller[R, M]
}

// Forward returns a View that dispatches to target. A nil target makes
// Render fail with ErrNilForwardTarget.
func Forward[R, M any](target *Controller[R, M]) *ForwardView[R, M] {
	return &ForwardView[R, M]{target: target}
}

// Target returns the Controller the view forwards to.
func (f *ForwardView[R, M]) Target() *Controller[R, M] {
	return f.target
}

// Render runs the target's full dispatch with the same request and model.
// source only feeds the OnForward hook.
func (f *ForwardView[R, M]) Render(ctx context.Context, source *Controller[R, M], req R, model M) error {
	if f.target == nil {
		return ErrNilForwardTarget
	}
	depth := ForwardDepth(ctx) + 1
	if source != nil && source.hooks.OnForward != nil {
		start := time.Now()
		err := f.target.HandleRequest(withForwardDepth(ctx, depth), req, model)
		source.hooks.OnForward(ctx, &ForwardEvent{
			From:     source.name,
			To:       f.target.name,
			Depth:    depth,
			Duration: time.Since(start),
			Err:      err,
		})
		return err
	}
	return f.target.HandleRequest(withForwardDepth(ctx, depth), req, model)
}
