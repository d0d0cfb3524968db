// Package app builds the services shared by the API server and the
// worker manager from configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"university-matcher/internal/advisor"
	"university-matcher/internal/cache"
	"university-matcher/internal/common/config"
	"university-matcher/internal/common/database"
	"university-matcher/internal/common/logger"
	"university-matcher/internal/common/observability"
	"university-matcher/internal/common/retry"
	"university-matcher/internal/ranking"
	"university-matcher/internal/scoring"
	"university-matcher/internal/store"
)

const (
	connectAttempts = 10
	connectDelay    = 2 * time.Second
)

type App struct {
	Config  *config.Config
	Ranking *ranking.Service
	Advisor *advisor.Advisor
	Obs     *observability.Observability

	closers []func() error
	logger  logger.Logger
}

// New connects the configured store and cache and builds the services.
// Backends are retried with backoff while they come up.
func New(ctx context.Context, cfg *config.Config, serviceName string, log logger.Logger) (*App, error) {
	a := &App{Config: cfg, logger: log}

	st, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Obs = observability.New(serviceName)
	a.closers = append(a.closers, func() error { a.Obs.Shutdown(); return nil })

	opts := []ranking.Option{ranking.WithObservability(a.Obs)}
	if cfg.Cache.Enabled {
		rc, err := a.openRedis(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		ttl := time.Duration(cfg.Cache.TTL) * time.Second
		opts = append(opts, ranking.WithCache(cache.New(rc.Client, ttl, cfg.Cache.Prefix, log)))
	}

	a.Ranking = ranking.NewService(st, scoring.NewCompositeScorer(scoring.DefaultWeights), ranking.Options{
		MaxResults:      cfg.Ranking.MaxResults,
		SimilarSize:     cfg.Ranking.SimilarSize,
		FetchMultiplier: cfg.Ranking.FetchMultiplier,
		MaxFetchSize:    cfg.Ranking.MaxFetchSize,
	}, log, opts...)

	a.Advisor = advisor.New(advisor.NewClient(advisor.Config{
		BaseURL:    cfg.APIs.XAI.BaseURL,
		APIKey:     cfg.APIs.XAI.APIKey,
		Model:      cfg.APIs.XAI.Model,
		Timeout:    config.GetDuration(cfg.APIs.XAI.Timeout),
		MaxRetries: cfg.APIs.XAI.MaxRetries,
	}, log))
	if cfg.APIs.XAI.APIKey == "" {
		log.Warn("no xAI API key configured, advisor requests will fail", nil)
	}

	return a, nil
}

func (a *App) openStore(ctx context.Context) (store.Store, error) {
	cfg := a.Config
	timeout := config.GetDuration(cfg.Store.Timeout)

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		var pg *database.PostgresClient
		err := retry.WithBackoff(ctx, func(ctx context.Context) error {
			var err error
			if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
				return err
			}
			if err := pg.Ping(ctx); err != nil {
				_ = pg.Close()
				return err
			}
			return nil
		}, connectAttempts, connectDelay, a.logger, "postgres connection")
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		a.logger.Info("postgres connected", map[string]interface{}{"table": cfg.Store.Table})
		return store.NewPostgresStore(pg.DB, cfg.Store.Table, cfg.Store.PageSize, timeout, a.logger)

	case config.BackendElasticsearch:
		var es *database.ElasticsearchClient
		err := retry.WithBackoff(ctx, func(ctx context.Context) error {
			var err error
			if es, err = database.NewElasticsearch(cfg.Database.Elasticsearch); err != nil {
				return err
			}
			return es.Ping(ctx)
		}, connectAttempts, connectDelay, a.logger, "elasticsearch connection")
		if err != nil {
			return nil, err
		}
		a.logger.Info("elasticsearch connected", map[string]interface{}{"index": cfg.Store.Index})
		return store.NewElasticsearchStore(es.Client, cfg.Store.Index, cfg.Store.PageSize, timeout, a.logger), nil
	}
	return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
}

func (a *App) openRedis(ctx context.Context) (*database.RedisClient, error) {
	rc := database.NewRedis(a.Config.Database.Redis)
	err := retry.WithBackoff(ctx, rc.Ping, connectAttempts, connectDelay, a.logger, "redis connection")
	if err != nil {
		_ = rc.Close()
		return nil, err
	}
	a.closers = append(a.closers, rc.Close)
	a.logger.Info("redis connected", map[string]interface{}{"address": a.Config.Database.Redis.Address})
	return rc, nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	a.closers = nil
}
