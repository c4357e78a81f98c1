package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/humdrum/internal/logging"
	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/aretw0/humdrum/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed session lock may be held.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring that two dispatch cycles never
// share a model at the same time. It uses reference counting to garbage
// collect unused locks.
type Manager struct {
	store ports.ModelStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker   ports.DistributedLocker
	lockTTL  time.Duration
	logger   *slog.Logger
	observer DiffObserver
}

// DiffObserver is notified after a dispatch saved a changed model.
type DiffObserver func(ctx context.Context, sessionID string, diff *domain.ModelDiff)

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the TTL of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithObserver registers fn to receive model diffs of successful dispatches.
func WithObserver(fn DiffObserver) Option {
	return func(m *Manager) {
		m.observer = fn
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.ModelStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Load retrieves an existing session model from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Model, error) {
	var model *domain.Model
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		model, err = m.store.Load(ctx, sessionID)
		return err
	})
	return model, err
}

// LoadOrCreate loads a session model, creating and persisting an empty one
// when the session does not exist yet.
func (m *Manager) LoadOrCreate(ctx context.Context, sessionID string) (*domain.Model, error) {
	var model *domain.Model
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		model, err = m.store.Load(ctx, sessionID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		model = domain.NewModel(sessionID)
		if err := m.store.Save(ctx, sessionID, model); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	return model, err
}

func (m *Manager) loadOrNew(ctx context.Context, sessionID string) (*domain.Model, error) {
	model, err := m.store.Load(ctx, sessionID)
	if err == nil {
		// Response hints belong to a single dispatch.
		model.Status = 0
		model.Location = ""
		return model, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to check session existence: %w", err)
	}
	return domain.NewModel(sessionID), nil
}

// Save persists the session model.
func (m *Manager) Save(ctx context.Context, sessionID string, model *domain.Model) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, model)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying model store.
func (m *Manager) Store() ports.ModelStore {
	return m.store
}

// Dispatch runs one dispatch cycle of c for the session while holding its lock.
//
// The model is loaded (or created), passed to c.HandleRequest together with
// req, and saved back when the cycle succeeds. Errors from the cycle are
// returned unchanged and the stored model is left untouched. The model used by
// the cycle is returned in both cases so callers can read response hints.
func (m *Manager) Dispatch(ctx context.Context, sessionID string, c *domain.Controller, req *domain.Request) (*domain.Model, error) {
	var model *domain.Model
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		model, err = m.loadOrNew(ctx, sessionID)
		if err != nil {
			return err
		}
		before := model.Snapshot()

		if err := c.HandleRequest(ctx, req, model); err != nil {
			return err
		}

		if err := m.store.Save(ctx, sessionID, model); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		if diff := domain.Diff(before, model); diff != nil {
			m.logger.Debug("Session model changed", "session_id", sessionID, "controller", c.Name(), "keys", diff.Keys())
			if m.observer != nil {
				m.observer(ctx, sessionID, diff)
			}
		}
		return nil
	})
	return model, err
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
