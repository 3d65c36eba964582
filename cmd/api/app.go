package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aethernova/habits-api/internal/adapters/cache"
	adapterHTTP "github.com/aethernova/habits-api/internal/adapters/handler/http"
	"github.com/aethernova/habits-api/internal/adapters/metrics"
	"github.com/aethernova/habits-api/internal/adapters/repository"
	"github.com/aethernova/habits-api/internal/config"
	"github.com/aethernova/habits-api/internal/core/domain"
	"github.com/aethernova/habits-api/internal/core/services"
	"github.com/aethernova/habits-api/internal/core/workers"
)

type worker interface {
	Start(ctx context.Context)
}

type app struct {
	router  *gin.Engine
	metrics *metrics.Collector
	workers []worker
}

// newApp wires repositories, services, workers and the router. rdb may be
// nil, in which case caching and rate limiting are off.
func newApp(cfg *config.Config, db *sqlx.DB, rdb *redis.Client, clock domain.Clock, logger *zap.Logger, startTime time.Time) *app {
	collector := metrics.NewCollector()

	users := repository.NewPostgresUserRepository(db.DB)
	completions := repository.NewPostgresCompletionRepository(db)

	var habits domain.HabitRepository = repository.NewPostgresHabitRepository(db)
	var quoteCache services.QuoteCache
	if rdb != nil {
		habits = repository.NewCachedHabitRepository(habits, rdb, cfg.CacheTTL, collector, logger)
		quoteCache = cache.NewRedisQuoteCache(rdb)
	}

	streakWorker := workers.NewStreakWorker(habits, completions, clock, collector, logger)
	freezeWorker := workers.NewFreezeExpiryWorker(habits, cfg.Workers.FreezeSweepInterval, clock, collector, logger)
	reminderWorker := workers.NewReminderWorker(users, nil, clock, collector, logger)

	tokens := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpiresIn, users)
	authSvc := services.NewAuthService(users, tokens)
	habitSvc := services.NewHabitService(habits, completions, clock, logger)
	completionSvc := services.NewCompletionService(completions, habits, streakWorker, collector, clock, logger)
	statsSvc := services.NewStatsService(habits, completions, clock, logger)
	quoteSvc := services.NewQuoteService(quoteCache, clock, logger)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:       adapterHTTP.NewAuthHandler(authSvc, tokens.TTL(), cfg.Env == config.EnvProduction),
		HabitHandler:      adapterHTTP.NewHabitHandler(habitSvc, clock),
		CompletionHandler: adapterHTTP.NewCompletionHandler(completionSvc),
		StatsHandler:      adapterHTTP.NewStatsHandler(statsSvc),
		QuoteHandler:      adapterHTTP.NewQuoteHandler(quoteSvc),
		Tokens:            tokens,
		Metrics:           collector,
		DB:                db,
		Redis:             rdb,
		Config:            cfg,
		Logger:            logger,
		StartTime:         startTime,
	})

	return &app{
		router:  router,
		metrics: collector,
		workers: []worker{streakWorker, freezeWorker, reminderWorker},
	}
}

func (a *app) startWorkers(ctx context.Context) {
	for _, w := range a.workers {
		w.Start(ctx)
	}
}
