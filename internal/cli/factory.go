// Package cli wires configuration into a running humdrum application for the
// command line tools.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/humdrum"
	"github.com/aretw0/humdrum/internal/config"
	"github.com/aretw0/humdrum/internal/logging"
	"github.com/aretw0/humdrum/pkg/adapters/file"
	"github.com/aretw0/humdrum/pkg/adapters/memory"
	"github.com/aretw0/humdrum/pkg/adapters/process"
	"github.com/aretw0/humdrum/pkg/adapters/redis"
	"github.com/aretw0/humdrum/pkg/observability"
	"github.com/aretw0/humdrum/pkg/persistence/middleware"
	"github.com/aretw0/humdrum/pkg/ports"
	"github.com/aretw0/humdrum/pkg/processes"
	"github.com/aretw0/humdrum/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Backend is the persistence selected by the configuration.
type Backend struct {
	Store  ports.ModelStore
	Locker ports.DistributedLocker
	Close  func() error
}

// CreateLogger builds the logger described by cfg on stderr.
func CreateLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return logging.New(level, format), nil
}

// OpenBackend opens the session store named by cfg.Store.Type. Redis
// connections are checked before returning. Masking and encryption, when
// configured, wrap the store in that order.
func OpenBackend(ctx context.Context, cfg config.Config) (*Backend, error) {
	mws, err := storeMiddleware(cfg)
	if err != nil {
		return nil, err
	}
	backend, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	backend.Store = middleware.Chain(backend.Store, mws...)
	return backend, nil
}

func storeMiddleware(cfg config.Config) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.Store.Mask) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.Store.Mask)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}

	encoded := cfg.Store.EncryptionKey
	if encoded == "" {
		encoded = os.Getenv(config.EnvStoreKey)
	}
	if encoded != "" {
		key, err := middleware.DecodeKey(encoded)
		if err != nil {
			return nil, fmt.Errorf("store encryption: %w", err)
		}
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	return mws, nil
}

func openStore(ctx context.Context, cfg config.Config) (*Backend, error) {
	switch cfg.Store.Type {
	case config.StoreMemory, "":
		return &Backend{Store: memory.NewStore(), Close: func() error { return nil }}, nil
	case config.StoreFile:
		return &Backend{Store: file.New(cfg.Store.Dir), Close: func() error { return nil }}, nil
	case config.StoreRedis:
		var opts []redis.Option
		if ttl := cfg.Session.TTL.Std(); ttl > 0 {
			opts = append(opts, redis.WithTTL(ttl))
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		return &Backend{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), "humdrum:lock:"),
			Close:  store.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
	}
}

// CreateRegistry returns the built-in processes plus the "exec" process
// backed by the commands file, when it exists.
func CreateRegistry(cfg config.Config) (*registry.Registry, error) {
	reg := processes.NewRegistry()
	if cfg.Commands == "" {
		return reg, nil
	}
	cmds, err := process.LoadCommands(cfg.Commands)
	if err != nil {
		return nil, err
	}
	if len(cmds) > 0 {
		process.NewRunner(process.WithCommands(cmds)).RegisterWith(reg)
	}
	return reg, nil
}

// CreateMetrics registers humdrum and Go runtime collectors on a fresh
// registry.
func CreateMetrics() (*observability.Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return observability.NewMetrics(reg), reg
}

// Setup is everything a command needs to dispatch.
type Setup struct {
	App     *humdrum.App
	Backend *Backend
	Logger  *slog.Logger
}

// Close releases the backend.
func (s *Setup) Close() error {
	return s.Backend.Close()
}

// CreateApp loads the site named by cfg and wires it with the configured
// backend, registry and logger. extra options are applied last.
func CreateApp(ctx context.Context, cfg config.Config, logger *slog.Logger, extra ...humdrum.Option) (*Setup, error) {
	if _, err := os.Stat(cfg.Site); err != nil {
		return nil, fmt.Errorf("site file: %w", err)
	}
	reg, err := CreateRegistry(cfg)
	if err != nil {
		return nil, err
	}
	backend, err := OpenBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []humdrum.Option{
		humdrum.WithRegistry(reg),
		humdrum.WithStore(backend.Store),
		humdrum.WithLogger(logger),
	}
	if backend.Locker != nil {
		opts = append(opts, humdrum.WithLocker(backend.Locker, cfg.Session.LockTTL.Std()))
	}
	if cfg.MaxForwardDepth > 0 {
		opts = append(opts, humdrum.WithMaxForwardDepth(cfg.MaxForwardDepth))
	}
	opts = append(opts, extra...)

	app, err := humdrum.Load(cfg.Site, opts...)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("error initializing humdrum: %w", err)
	}
	return &Setup{App: app, Backend: backend, Logger: logger}, nil
}
