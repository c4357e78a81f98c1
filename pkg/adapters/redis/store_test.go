package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/humdrum/pkg/adapters/redis"
	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/aretw0/humdrum/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunModelStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("app:"))

	require.NoError(t, store.Save(context.Background(), "s1", domain.NewModel("s1")))
	assert.True(t, mr.Exists("app:s1"))
	assert.True(t, mr.Exists("app:index"))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	sessionID := "session-ttl"
	model := domain.NewModel(sessionID)
	model.Set("foo", "bar")

	require.NoError(t, store.Save(ctx, sessionID, model))

	sessions, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, sessions, sessionID)

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, sessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// The index is pruned by wall clock, not by miniredis time.
	time.Sleep(1200 * time.Millisecond)

	sessions, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRedisStore_ResponseHintsNotPersisted(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	model := domain.NewModel("s1")
	model.Status = 302
	model.Location = "/c/login"
	require.NoError(t, store.Save(ctx, "s1", model))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, loaded.Status)
	assert.Empty(t, loaded.Location)
}
