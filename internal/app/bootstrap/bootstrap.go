package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	account "loanbook/contexts/identity-access/account-service"
	accountpostgres "loanbook/contexts/identity-access/account-service/adapters/postgres"
	authorization "loanbook/contexts/identity-access/authorization-service"
	authzmemory "loanbook/contexts/identity-access/authorization-service/adapters/memory"
	authzredis "loanbook/contexts/identity-access/authorization-service/adapters/redis"
	authzports "loanbook/contexts/identity-access/authorization-service/ports"
	tokens "loanbook/contexts/identity-access/token-service"
	loan "loanbook/contexts/lending-core/loan-service"
	loanpostgres "loanbook/contexts/lending-core/loan-service/adapters/postgres"
	loanworkers "loanbook/contexts/lending-core/loan-service/application/workers"
	payment "loanbook/contexts/lending-core/payment-service"
	paymentpostgres "loanbook/contexts/lending-core/payment-service/adapters/postgres"
	"loanbook/internal/platform/cache"
	"loanbook/internal/platform/config"
	"loanbook/internal/platform/db"
	"loanbook/internal/platform/httpserver"
	"loanbook/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	redis    *cache.Redis
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	redis        *cache.Redis
	outboxRelay  loanworkers.OutboxRelay
	ownership    loanworkers.OwnershipCacheConsumer
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := migrate(pg); err != nil {
		return nil, err
	}

	redisConn, ownershipCache, err := buildOwnershipCache(cfg.RedisAddr)
	if err != nil {
		return nil, err
	}

	tokenService, err := tokens.NewService(tokens.Config{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	}, accountpostgres.SystemClock{})
	if err != nil {
		return nil, err
	}

	accountRepo := accountpostgres.NewRepository(pg.DB, logger)
	accounts := account.NewModule(account.Dependencies{
		Repository:  accountRepo,
		Tokens:      tokenService,
		Clock:       accountpostgres.SystemClock{},
		IDGenerator: accountpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	loanRepo := loanpostgres.NewRepository(pg.DB, logger)
	paymentRepo := paymentpostgres.NewRepository(pg.DB, logger)

	authz := authorization.NewModule(authorization.Dependencies{
		Loans:    loanRepo,
		Cache:    ownershipCache,
		Clock:    loanpostgres.SystemClock{},
		CacheTTL: cfg.OwnershipCacheTTL,
		Logger:   logger,
	})

	loans := loan.NewModule(loan.Dependencies{
		Repository:  loanRepo,
		Accounts:    accountRepo,
		Payments:    paymentRepo,
		Invalidator: ownershipCache,
		Clock:       loanpostgres.SystemClock{},
		IDGenerator: loanpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	payments := payment.NewModule(payment.Dependencies{
		Repository:  paymentRepo,
		Authorizer:  authz.AuthorizePayment,
		Scope:       authz.OwnedLoanScope,
		Clock:       paymentpostgres.SystemClock{},
		IDGenerator: paymentpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	server := httpserver.New(accounts, loans, payments, authz, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		redis:    redisConn,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	redisConn, ownershipCache, err := buildOwnershipCache(cfg.RedisAddr)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	loanRepo := loanpostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		redis:    redisConn,
		outboxRelay: loanworkers.OutboxRelay{
			Outbox:    loanRepo,
			Publisher: kafka,
			Clock:     loanpostgres.SystemClock{},
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		ownership: loanworkers.OwnershipCacheConsumer{
			Subscriber:    kafka,
			Invalidator:   ownershipCache,
			ConsumerGroup: "lending-ownership-cache-cg",
			Logger:        logger,
		},
		pollInterval: cfg.OutboxPollInterval,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.ownership.Start(ctx); err != nil {
		return err
	}

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(w.pollInterval)
		defer ticker.Stop()
		for {
			if err := w.outboxRelay.RunOnce(ctx); err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})
	return g.Wait()
}

func (w *WorkerApp) Close() error {
	if w.redis != nil {
		_ = w.redis.Close()
	}
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func migrate(pg *db.Postgres) error {
	if err := accountpostgres.Migrate(pg.DB); err != nil {
		return err
	}
	if err := loanpostgres.Migrate(pg.DB); err != nil {
		return err
	}
	return paymentpostgres.Migrate(pg.DB)
}

// buildOwnershipCache returns a redis-backed cache when REDIS_ADDR is set and
// an in-process one otherwise, so single-node deployments need no redis.
func buildOwnershipCache(addr string) (*cache.Redis, authzports.OwnershipCache, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, authzmemory.NewStore(), nil
	}
	conn, err := cache.Connect(addr)
	if err != nil {
		return nil, nil, err
	}
	return conn, authzredis.NewCache(conn.Client), nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
