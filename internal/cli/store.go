package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/rootseek/internal/config"
	"github.com/aretw0/rootseek/pkg/adapters/file"
	"github.com/aretw0/rootseek/pkg/adapters/memory"
	"github.com/aretw0/rootseek/pkg/adapters/redis"
	"github.com/aretw0/rootseek/pkg/adapters/sqlite"
	"github.com/aretw0/rootseek/pkg/persistence/middleware"
	"github.com/aretw0/rootseek/pkg/ports"
	"github.com/aretw0/rootseek/pkg/session"
)

// LockPrefix namespaces the distributed session locks in Redis.
const LockPrefix = "rootseek:lock:"

// OpenSessions builds the session manager for the configured store.
// With an encryption key every state is sealed before it reaches the backend.
// The returned close function releases the backend connection.
func OpenSessions(ctx context.Context, cfg config.Config, logger *slog.Logger) (*session.Manager, func() error, error) {
	store, locker, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, closeStore, err
	}

	enc, err := cfg.Encryption()
	if err != nil {
		_ = closeStore()
		return nil, func() error { return nil }, err
	}
	if enc != nil {
		mw, err := middleware.NewEncryptionMiddleware(*enc)
		if err != nil {
			_ = closeStore()
			return nil, func() error { return nil }, err
		}
		store = middleware.Chain(store, mw)
		logger.Debug("Session encryption enabled", "fallback_keys", len(enc.FallbackKeys))
	}

	opts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	return session.NewManager(store, opts...), closeStore, nil
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.StateStore, ports.DistributedLocker, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(cfg.Store.Kind) {
	case "", "memory":
		return memory.NewStore(), nil, noop, nil

	case "file":
		logger.Debug("Using file session store", "dir", cfg.Store.Dir)
		return file.New(cfg.Store.Dir), nil, noop, nil

	case "sqlite":
		store, err := sqlite.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, noop, err
		}
		logger.Debug("Using sqlite session store", "path", cfg.Store.Path)
		return store, nil, store.Close, nil

	case "redis":
		var storeOpts []redis.Option
		if cfg.Store.TTL > 0 {
			storeOpts = append(storeOpts, redis.WithTTL(cfg.Store.TTL))
		}
		store, err := redis.New(cfg.Store.RedisURL, storeOpts...)
		if err != nil {
			return nil, nil, noop, err
		}
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, noop, fmt.Errorf("redis unreachable: %w", err)
		}
		logger.Debug("Using redis session store")
		return store, redis.NewLocker(store.Client(), LockPrefix), store.Close, nil
	}
	return nil, nil, noop, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
}
