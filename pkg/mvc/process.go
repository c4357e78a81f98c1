package mvc

import "context"

// Process is one unit of application logic in a Controller's chain.
// It returns the key of the View to render, or a key that is not registered
// (typically "") to let the chain continue.
type Process[R, M any] interface {
	CallBack(ctx context.Context, c *Controller[R, M], req R, model M) (string, error)
}

// ProcessFunc adapts an ordinary function to the Process interface.
type ProcessFunc[R, M any] func(ctx context.Context, c *Controller[R, M], req R, model M) (string, error)

// CallBack calls f.
func (f ProcessFunc[R, M]) CallBack(ctx context.Context, c *Controller[R, M], req R, model M) (string, error) {
	return f(ctx, c, req, model)
}

// boundProcess forwards to a method of a fixed target value.
type boundProcess[T, R, M any] struct {
	target T
	method func(T, context.Context, *Controller[R, M], R, M) (string, error)
}

func (b *boundProcess[T, R, M]) CallBack(ctx context.Context, c *Controller[R, M], req R, model M) (string, error) {
	return b.method(b.target, ctx, c, req, model)
}

// Bind returns a Process that calls method on target, passing the dispatch
// arguments through and returning whatever the method returns.
// The method is usually a method expression:
//
//	mvc.Bind(auth, (*Auth).CheckLogin)
func Bind[T, R, M any](target T, method func(T, context.Context, *Controller[R, M], R, M) (string, error)) Process[R, M] {
	return &boundProcess[T, R, M]{target: target, method: method}
}

// Always returns a Process that always names the given view.
func Always[R, M any](view string) Process[R, M] {
	return ProcessFunc[R, M](func(context.Context, *Controller[R, M], R, M) (string, error) {
		return view, nil
	})
}

// Never returns a Process that never decides.
func Never[R, M any]() Process[R, M] {
	return Always[R, M]("")
}
