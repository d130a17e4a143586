package commands

import (
	"fmt"

	"github.com/wonny/copa/internal/audit"
	"github.com/wonny/copa/internal/contracts"
	"github.com/wonny/copa/internal/data"
	"github.com/wonny/copa/internal/period"
	"github.com/wonny/copa/internal/ranking"
	"github.com/wonny/copa/internal/scheduler"
	"github.com/wonny/copa/pkg/config"
	"github.com/wonny/copa/pkg/database"
	"github.com/wonny/copa/pkg/logger"
	"github.com/wonny/copa/pkg/redis"
)

// app holds the wired dependency graph shared by the CLI commands.
type app struct {
	cfg    *config.Config
	logger *logger.Logger
	db     *database.DB
	cache  *redis.Client

	ranking    *ranking.Service
	controller *period.Controller
	scheduler  *scheduler.TransitionScheduler
}

// initApp loads config and wires every component against the shared
// database pool. Callers must Close() when done.
func initApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	cacheClient, err := redis.New(cfg)
	if err != nil {
		// The read cache is optional; run without it.
		log.WithError(err).Warn("Redis unavailable, running without ranking cache")
		cacheClient = nil
	}

	var rankingCache *redis.Cache
	if cacheClient != nil && cacheClient.Enabled() {
		rankingCache = redis.NewCache(cacheClient, "copa:ranking")
	}

	clock := contracts.SystemClock{}
	auditSink := audit.NewRepository(db.Pool)
	periodRepo := period.NewRepository(db.Pool)

	rankingService := ranking.NewService(
		data.NewSectorRepository(db.Pool),
		data.NewCriterionRepository(db.Pool),
		data.NewPerformanceRepository(db.Pool),
		data.NewTargetRepository(db.Pool),
		rankingCache,
		cfg.Redis.CacheTTL,
		clock,
		log,
	)

	controller := period.NewController(
		periodRepo,
		rankingService,
		period.RoleAuthorizer{},
		auditSink,
		clock,
		log,
	)

	transitioner := scheduler.NewTransitioner(periodRepo, clock, log)
	sched := scheduler.New(transitioner, auditSink, cfg.Scheduler, clock, log)

	return &app{
		cfg:        cfg,
		logger:     log,
		db:         db,
		cache:      cacheClient,
		ranking:    rankingService,
		controller: controller,
		scheduler:  sched,
	}, nil
}

// Close releases shared resources.
func (a *app) Close() {
	if a.cache != nil {
		_ = a.cache.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
