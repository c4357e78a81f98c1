// Package middleware wraps a ports.ModelStore with encryption at rest and
// masking of sensitive model keys.
package middleware

import "github.com/aretw0/humdrum/pkg/ports"

// Middleware allows wrapping a ModelStore to add behavior.
type Middleware func(ports.ModelStore) ports.ModelStore

// Chain applies mws so that the first one is the outermost.
func Chain(store ports.ModelStore, mws ...Middleware) ports.ModelStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
