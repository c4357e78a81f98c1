package humdrum

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/humdrum/internal/logging"
	"github.com/aretw0/humdrum/pkg/adapters/memory"
	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/aretw0/humdrum/pkg/mvc"
	"github.com/aretw0/humdrum/pkg/observability"
	"github.com/aretw0/humdrum/pkg/ports"
	"github.com/aretw0/humdrum/pkg/processes"
	"github.com/aretw0/humdrum/pkg/registry"
	"github.com/aretw0/humdrum/pkg/session"
	"github.com/aretw0/humdrum/pkg/site"
)

// App is the high-level entry point: a built site plus session handling.
// It is safe for concurrent use; dispatches on the same session are
// serialised.
type App struct {
	site     *site.Site
	sessions *session.Manager
	logger   *slog.Logger
}

type settings struct {
	registry        *registry.Registry
	store           ports.ModelStore
	locker          ports.DistributedLocker
	lockTTL         time.Duration
	observer        session.DiffObserver
	hooks           []mvc.Hooks
	logger          *slog.Logger
	maxForwardDepth *int
}

// Option defines a functional option for configuring the App.
type Option func(*settings)

// WithRegistry resolves process names through reg instead of the built-ins.
func WithRegistry(reg *registry.Registry) Option {
	return func(s *settings) {
		s.registry = reg
	}
}

// WithStore persists session models in store (default: in memory).
func WithStore(store ports.ModelStore) Option {
	return func(s *settings) {
		s.store = store
	}
}

// WithLocker enables distributed session locking.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(s *settings) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

// WithObserver receives the model diff of every dispatch that changed it.
func WithObserver(fn session.DiffObserver) Option {
	return func(s *settings) {
		s.observer = fn
	}
}

// WithHooks attaches dispatch hooks to every controller. It may be repeated.
func WithHooks(h mvc.Hooks) Option {
	return func(s *settings) {
		s.hooks = append(s.hooks, h)
	}
}

// WithLogger sets a structured logger. Dispatch steps are logged at debug
// level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithMaxForwardDepth overrides the site's forward depth guard.
func WithMaxForwardDepth(n int) Option {
	return func(s *settings) {
		s.maxForwardDepth = &n
	}
}

// New builds an App from a parsed site definition.
func New(def *site.Definition, opts ...Option) (*App, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	if s.registry == nil {
		s.registry = processes.NewRegistry()
	}
	if s.store == nil {
		s.store = memory.NewStore()
	}

	hooks := s.hooks
	if s.logger != nil {
		hooks = append([]mvc.Hooks{observability.LogHooks(s.logger)}, hooks...)
	} else {
		s.logger = logging.NewNop()
	}

	buildOpts := []site.Option{site.WithHooks(observability.Combine(hooks...))}
	if s.maxForwardDepth != nil {
		buildOpts = append(buildOpts, site.WithMaxForwardDepth(*s.maxForwardDepth))
	}
	st, err := site.Build(def, s.registry, buildOpts...)
	if err != nil {
		return nil, err
	}

	sessOpts := []session.Option{session.WithLogger(s.logger)}
	if s.locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(s.locker))
		if s.lockTTL > 0 {
			sessOpts = append(sessOpts, session.WithLockTTL(s.lockTTL))
		}
	}
	if s.observer != nil {
		sessOpts = append(sessOpts, session.WithObserver(s.observer))
	}

	return &App{
		site:     st,
		sessions: session.NewManager(s.store, sessOpts...),
		logger:   s.logger,
	}, nil
}

// Load reads a site file (YAML, or JSON by extension) and builds an App.
func Load(path string, opts ...Option) (*App, error) {
	def, err := site.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(def, opts...)
}

// Dispatch runs the named controller (the entry controller when name is "")
// for a session and returns the model after the cycle. A nil req is an empty
// request whose output is discarded.
func (a *App) Dispatch(ctx context.Context, name, sessionID string, req *domain.Request) (*domain.Model, error) {
	c, err := a.Controller(name)
	if err != nil {
		return nil, err
	}
	if req == nil {
		req = domain.NewRequest(domain.SourceTest, nil)
	}
	a.logger.Debug("Dispatch", "controller", c.Name(), "session_id", sessionID, "source", req.Source)
	return a.sessions.Dispatch(ctx, sessionID, c, req)
}

// Controller resolves name, with "" meaning the entry controller.
func (a *App) Controller(name string) (*domain.Controller, error) {
	if name == "" {
		name = a.site.EntryName()
	}
	c, ok := a.site.Controller(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", site.ErrUnknownController, name)
	}
	return c, nil
}

// Controllers returns the controller names in sorted order.
func (a *App) Controllers() []string {
	return a.site.Names()
}

// Definition returns the site definition the App was built from.
func (a *App) Definition() *site.Definition {
	return a.site.Definition()
}

// Site returns the wired controllers.
func (a *App) Site() *site.Site {
	return a.site
}

// Sessions returns the session manager.
func (a *App) Sessions() *session.Manager {
	return a.sessions
}
