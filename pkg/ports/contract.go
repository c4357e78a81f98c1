package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunModelStoreContract runs a suite of tests to verify that a ModelStore
// implementation adheres to the defined interface contract.
func RunModelStoreContract(t *testing.T, store ModelStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		model := domain.NewModel(sessionID)
		model.Set("foo", "bar")
		model.Set("count", 42)

		err := store.Save(ctx, sessionID, model)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sessionID, loaded.SessionID)
		assert.Equal(t, "bar", loaded.Data["foo"])
		// JSON backed stores turn ints into float64; only presence is part of the contract.
		assert.NotNil(t, loaded.Data["count"])
	})

	t.Run("Load Returns Copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Set("foo", "mutated")

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "bar", again.Data["foo"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewModel(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewModel(id1))
		_ = store.Save(ctx, id2, domain.NewModel(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
