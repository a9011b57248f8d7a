package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	astronautCache "stargate/internal/astronaut/cache"
	astronautMetrics "stargate/internal/astronaut/metrics"
	"stargate/internal/astronaut/service"
	"stargate/internal/astronaut/store"
	"stargate/internal/astronaut/store/memory"
	"stargate/internal/astronaut/store/sqlstore"
	"stargate/internal/audit"
	"stargate/internal/platform/config"
	"stargate/internal/platform/logger"
	platformRedis "stargate/internal/platform/redis"
)

// app holds the process-wide dependencies shared by the subcommands.
type app struct {
	cfg    config.Config
	logger *slog.Logger

	db      *sql.DB
	dialect sqlstore.Dialect
	store   store.Store
	tx      store.Tx

	redis *platformRedis.Client
	kafka *audit.KafkaPublisher
}

func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger.New(cfg.Observability.LogLevel, cfg.Observability.LogFormat), nil
}

// openStore selects the record store from DB_DRIVER.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: log}
	switch cfg.Database.Driver {
	case config.DriverMemory:
		st := memory.New()
		a.store, a.tx = st, memory.NewTx(st)
		return a, nil
	case config.DriverSQLite:
		db, err := sqlstore.OpenSQLite(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.db, a.dialect = db, sqlstore.SQLite
	case config.DriverPostgres:
		db, err := sqlstore.OpenPostgres(ctx, cfg.Database.URL, sqlstore.PoolConfig{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		a.db, a.dialect = db, sqlstore.Postgres
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	st := sqlstore.New(a.db, a.dialect)
	a.store, a.tx = st, sqlstore.NewTx(st)
	log.InfoContext(ctx, "record store opened", "driver", cfg.Database.Driver)
	return a, nil
}

// migrate applies pending migrations. The memory store has none.
func (a *app) migrate(ctx context.Context) ([]string, error) {
	if a.db == nil {
		return nil, nil
	}
	applied, err := sqlstore.Migrate(ctx, a.db, a.dialect)
	if err != nil {
		return nil, err
	}
	for _, name := range applied {
		a.logger.InfoContext(ctx, "migration applied", "name", name)
	}
	return applied, nil
}

// buildService wires the astronaut service with its optional cache and audit
// sinks. The returned worker is non-nil when Kafka is configured and must be run.
func (a *app) buildService(ctx context.Context, reg prometheus.Registerer) (*service.Service, *audit.Worker, error) {
	opts := []service.Option{
		service.WithLogger(a.logger),
		service.WithMetrics(astronautMetrics.New(reg)),
	}

	redisClient, err := platformRedis.New(ctx, a.cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if redisClient != nil {
		a.redis = redisClient
		opts = append(opts, service.WithCache(astronautCache.New(redisClient.Client, astronautCache.WithTTL(a.cfg.Redis.CacheTTL))))
		a.logger.InfoContext(ctx, "projection cache enabled", "ttl", a.cfg.Redis.CacheTTL.String())
	}

	sinks := audit.Fanout{audit.NewLogPublisher(a.logger)}
	var worker *audit.Worker
	if len(a.cfg.Kafka.Brokers) > 0 {
		kp, err := audit.NewKafkaPublisher(a.cfg.Kafka.Brokers, a.cfg.Kafka.AuditTopic)
		if err != nil {
			return nil, nil, err
		}
		if err := kp.EnsureTopic(ctx, 1, 1); err != nil {
			a.logger.WarnContext(ctx, "audit topic not ensured", "topic", a.cfg.Kafka.AuditTopic, "error", err)
		}
		a.kafka = kp
		queue := audit.NewQueue(a.cfg.Kafka.QueueSize)
		breaker := audit.NewBreaker(kp, a.cfg.Kafka.BreakerThreshold, a.cfg.Kafka.BreakerCooldown)
		worker = audit.NewWorker(breaker, queue, a.logger)
		audit.RegisterDeliveryMetrics(reg, queue, breaker)
		sinks = append(sinks, queue)
		a.logger.InfoContext(ctx, "kafka audit sink enabled", "topic", a.cfg.Kafka.AuditTopic)
	}
	opts = append(opts, service.WithAuditPublisher(sinks))

	return service.New(a.store, a.tx, opts...), worker, nil
}

// ping reports database reachability for /healthz.
func (a *app) ping(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	return a.db.PingContext(ctx)
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.kafka != nil {
		errs = append(errs, a.kafka.Close(ctx))
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
