package mvc

import "errors"

// ErrForwardDepthExceeded is returned by HandleRequest when a Controller with a
// forward depth limit is entered through more nested forwards than allowed.
var ErrForwardDepthExceeded = errors.New("forward depth exceeded")

// ErrNilForwardTarget is returned by a forward view built without a target.
var ErrNilForwardTarget = errors.New("forward target is nil")
