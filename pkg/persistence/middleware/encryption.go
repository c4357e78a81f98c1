package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/aretw0/humdrum/pkg/ports"
)

// EnvelopeKey is the only data key of an encrypted model as the inner store sees it.
const EnvelopeKey = "__encrypted__"

var (
	// ErrInvalidKey is returned for keys that are not 32 bytes long.
	ErrInvalidKey = errors.New("encryption key must be 32 bytes (AES-256)")
	// ErrMissingEnvelope is returned when a stored model was not written encrypted.
	ErrMissingEnvelope = errors.New("model is missing encrypted data envelope")
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey encrypts new data. Must be 32 bytes.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt,
	// so keys can be rotated without rewriting every session.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.ModelStore
	config EncryptionConfig
}

// NewEncryptionMiddleware encrypts whole models with AES-GCM before they reach
// the wrapped store.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, ErrInvalidKey
	}
	for i, k := range config.FallbackKeys {
		if len(k) != 32 {
			return nil, fmt.Errorf("fallback key %d: %w", i, ErrInvalidKey)
		}
	}
	return func(next ports.ModelStore) ports.ModelStore {
		return &encryptionMiddleware{next: next, config: config}
	}, nil
}

// DecodeKey parses a base64 encoded 32 byte key.
func DecodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode key: %w", err)
	}
	if len(key) != 32 {
		return nil, ErrInvalidKey
	}
	return key, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, sessionID string, model *domain.Model) error {
	plainText, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt model: %w", err)
	}

	envelope := domain.NewModel(sessionID)
	envelope.Data[EnvelopeKey] = base64.StdEncoding.EncodeToString(ciphertext)
	return m.next.Save(ctx, sessionID, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, sessionID string) (*domain.Model, error) {
	envelope, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	encoded, ok := envelope.Data[EnvelopeKey].(string)
	if !ok {
		return nil, ErrMissingEnvelope
	}
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt model: %w", err)
	}

	model := domain.NewModel(sessionID)
	if err := json.Unmarshal(plainText, model); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted model: %w", err)
	}
	if model.Data == nil {
		model.Data = make(map[string]any)
	}
	return model, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func encrypt(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
