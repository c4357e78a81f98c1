package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/aretw0/humdrum/pkg/adapters/memory"
	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/aretw0/humdrum/pkg/persistence/middleware"
	"github.com/aretw0/humdrum/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, next ports.ModelStore, cfg middleware.EncryptionConfig) ports.ModelStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunModelStoreContract(t, encrypted(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	inner := memory.NewStore()
	store := encrypted(t, inner, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	model := domain.NewModel("s1")
	model.Set("secret", "my-secret-sauce")
	require.NoError(t, store.Save(ctx, "s1", model))

	raw, err := inner.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotContains(t, raw.Data, "secret")
	assert.Contains(t, raw.Data, middleware.EnvelopeKey)

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", loaded.SessionID)
	assert.Equal(t, "my-secret-sauce", loaded.Data["secret"])
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	inner := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	oldStore := encrypted(t, inner, middleware.EncryptionConfig{ActiveKey: oldKey})
	model := domain.NewModel("rot")
	model.Set("data", "old")
	require.NoError(t, oldStore.Save(ctx, "rot", model))

	newStore := encrypted(t, inner, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	loaded, err := newStore.Load(ctx, "rot")
	require.NoError(t, err)
	assert.Equal(t, "old", loaded.Data["data"])

	loaded.Set("data", "new")
	require.NoError(t, newStore.Save(ctx, "rot", loaded))

	_, err = oldStore.Load(ctx, "rot")
	assert.Error(t, err, "old key alone must not read data written with the new key")
}

func TestEncryptionMiddleware_PlainModel(t *testing.T) {
	inner := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, inner.Save(ctx, "plain", domain.NewModel("plain")))

	store := encrypted(t, inner, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := store.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrMissingEnvelope)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}

func TestDecodeKey(t *testing.T) {
	key := generateKey(t)
	decoded, err := middleware.DecodeKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, decoded)

	_, err = middleware.DecodeKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)

	_, err = middleware.DecodeKey("%%%")
	assert.Error(t, err)
}

func TestPIIMiddleware_Masking(t *testing.T) {
	inner := memory.NewStore()
	mw, err := middleware.NewPIIMiddleware([]string{"(?i)password", "^ssn$"})
	require.NoError(t, err)
	store := mw(inner)
	ctx := context.Background()

	model := domain.NewModel("pii")
	model.Set("user", "alice")
	model.Set("Password", "hunter2")
	model.Set("profile", map[string]any{"ssn": "123", "city": "Recife"})
	require.NoError(t, store.Save(ctx, "pii", model))

	assert.Equal(t, "hunter2", model.Data["Password"], "caller's model must stay intact")

	loaded, err := store.Load(ctx, "pii")
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded.Data["user"])
	assert.Equal(t, middleware.Mask, loaded.Data["Password"])
	profile := loaded.Data["profile"].(map[string]any)
	assert.Equal(t, middleware.Mask, profile["ssn"])
	assert.Equal(t, "Recife", profile["city"])
}

func TestPIIMiddleware_InvalidPattern(t *testing.T) {
	_, err := middleware.NewPIIMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain_MaskThenEncrypt(t *testing.T) {
	inner := memory.NewStore()
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)
	pii, err := middleware.NewPIIMiddleware([]string{"token"})
	require.NoError(t, err)

	store := middleware.Chain(inner, pii, enc)
	ctx := context.Background()

	model := domain.NewModel("c")
	model.Set("token", "abc")
	require.NoError(t, store.Save(ctx, "c", model))

	raw, err := inner.Load(ctx, "c")
	require.NoError(t, err)
	assert.Contains(t, raw.Data, middleware.EnvelopeKey)

	loaded, err := store.Load(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded.Data["token"])
}
