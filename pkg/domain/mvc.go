package domain

import "github.com/aretw0/humdrum/pkg/mvc"

// Controller is an mvc.Controller over the domain request and model.
type Controller = mvc.Controller[*Request, *Model]

// Process is an mvc.Process over the domain request and model.
type Process = mvc.Process[*Request, *Model]

// ProcessFunc is an mvc.ProcessFunc over the domain request and model.
type ProcessFunc = mvc.ProcessFunc[*Request, *Model]

// View is an mvc.View over the domain request and model.
type View = mvc.View[*Request, *Model]

// ViewFunc is an mvc.ViewFunc over the domain request and model.
type ViewFunc = mvc.ViewFunc[*Request, *Model]

// NewController creates a Controller for the domain types.
func NewController(opts ...mvc.Option) *Controller {
	return mvc.NewController[*Request, *Model](opts...)
}
