package mvc

import "context"

// View renders the outcome of a dispatch. source is the Controller that
// selected the view.
type View[R, M any] interface {
	Render(ctx context.Context, source *Controller[R, M], req R, model M) error
}

// ViewFunc adapts an ordinary function to the View interface.
type ViewFunc[R, M any] func(ctx context.Context, source *Controller[R, M], req R, model M) error

// Render calls f.
func (f ViewFunc[R, M]) Render(ctx context.Context, source *Controller[R, M], req R, model M) error {
	return f(ctx, source, req, model)
}

type nopView[R, M any] struct{}

func (nopView[R, M]) Render(context.Context, *Controller[R, M], R, M) error { return nil }

// Nop returns a View that renders nothing.
func Nop[R, M any]() View[R, M] {
	return nopView[R, M]{}
}
