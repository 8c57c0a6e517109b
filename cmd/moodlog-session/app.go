package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/moodlog/pkg/authapi"
	"github.com/dmitrymomot/moodlog/pkg/authstore"
	"github.com/dmitrymomot/moodlog/pkg/environment"
	"github.com/dmitrymomot/moodlog/pkg/kvstore"
	"github.com/dmitrymomot/moodlog/pkg/logger"
	"github.com/dmitrymomot/moodlog/pkg/redis"
	"github.com/dmitrymomot/moodlog/pkg/requestid"
	"github.com/dmitrymomot/moodlog/pkg/session"
)

type app struct {
	log     *slog.Logger
	durable string
	health  func(context.Context) error
	manager *session.Manager
	client  *authapi.Client
	store   *authstore.Store
	closers []func() error
}

func newApp(ctx context.Context, cfg settings, admin bool) (*app, error) {
	log := logger.New(
		logger.WithEnvironment(environment.Parse(cfg.app.Env), serviceName),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	a := &app{log: log, health: func(context.Context) error { return nil }}

	durable, err := a.openDurable(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ephemeral := kvstore.NewMemoryStore()
	a.closers = append(a.closers, ephemeral.Close)

	sessionCfg := cfg.session
	apiCfg := cfg.api
	if admin {
		sessionCfg.KeyPrefix = "admin_" + sessionCfg.KeyPrefix
		sessionCfg.Scope = "admin"
		apiCfg.Admin = true
	}

	a.manager = session.NewFromConfig(ephemeral, durable, sessionCfg, session.WithLogger(log))
	a.closers = append(a.closers, a.manager.Close)

	a.client, err = authapi.NewFromConfig(apiCfg,
		authapi.WithTokenSource(a.manager.TokenSource(ctx)),
		authapi.WithLogger(log),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.store = authstore.New(a.manager, a.client, authstore.WithLogger(log))
	a.closers = append(a.closers, a.store.Close)

	return a, nil
}

func (a *app) openDurable(ctx context.Context, cfg settings) (kvstore.Store, error) {
	switch cfg.app.Durable {
	case "", "file":
		store, err := kvstore.NewFileStore(cfg.app.SessionFile, kvstore.WithFileLogger(a.log))
		if err != nil {
			return nil, err
		}
		a.durable = "file " + store.Path()
		return store, nil
	case "redis":
		client, err := redis.Connect(ctx, cfg.redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		a.health = redis.Healthcheck(client, 0)
		a.durable = "redis"
		return redis.NewStorageWithConfig(client, cfg.redis, redis.WithLogger(a.log)), nil
	default:
		return nil, fmt.Errorf("unknown durable store %q", cfg.app.Durable)
	}
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
