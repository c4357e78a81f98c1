package ports

import (
	"context"

	"github.com/aretw0/humdrum/pkg/domain"
)

// ModelStore defines the interface for persisting session models between
// dispatch cycles.
type ModelStore interface {
	// Save persists the model for a given session ID.
	Save(ctx context.Context, sessionID string, model *domain.Model) error

	// Load retrieves the model for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Model, error)

	// Delete removes the model for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of the stored sessions.
	List(ctx context.Context) ([]string, error)
}
