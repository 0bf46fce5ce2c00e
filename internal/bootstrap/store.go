// Package bootstrap assembles the task store selected by configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/daymate/internal/config"
	boltInfra "github.com/fastygo/daymate/internal/infrastructure/bolt"
	"github.com/fastygo/daymate/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/daymate/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/daymate/internal/infrastructure/redis"
	"github.com/fastygo/daymate/repository"
	boltRepo "github.com/fastygo/daymate/repository/bolt"
	"github.com/fastygo/daymate/repository/memory"
	pgRepo "github.com/fastygo/daymate/repository/postgres"
	redisRepo "github.com/fastygo/daymate/repository/redis"
)

type closer struct {
	name string
	fn   func() error
}

// Store is the configured task repository plus its health checks and the
// resources it holds open.
type Store struct {
	Tasks  repository.TaskRepository
	Driver string

	checks  map[string]monitor.CheckFunc
	closers []closer
}

// OpenStore connects the backend named by cfg.Store.Driver and, when enabled,
// wraps it with the Redis cache.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{Driver: cfg.Store.Driver, checks: map[string]monitor.CheckFunc{}}

	switch cfg.Store.Driver {
	case config.StoreMemory:
		s.Tasks = memory.NewTaskRepository()
		logger.Warn("using in-memory task store; data is lost on restart")

	case config.StoreBolt:
		db, err := boltInfra.Open(cfg.Store.BoltPath, logger, boltRepo.Bucket)
		if err != nil {
			return nil, fmt.Errorf("open bolt store: %w", err)
		}
		s.addCloser("bolt", db.Close)
		s.checks["store"] = func(context.Context) error { return boltInfra.Ping(db) }
		s.Tasks = boltRepo.NewTaskRepository(db)

	case config.StorePostgres:
		if err := pgInfra.RunMigrations(cfg, logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.addCloser("postgres", func() error {
			pgInfra.Close(pool, logger)
			return nil
		})
		s.checks["store"] = pool.Ping
		s.Tasks = pgRepo.NewTaskRepository(pool)

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if cfg.Cache.Enabled {
		client, err := redisInfra.NewClient(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Warn("task cache disabled", zap.Error(err))
		} else {
			s.addCloser("redis", client.Close)
			s.checks["cache"] = redisInfra.Ping(client)
			s.Tasks = redisRepo.NewCachedTaskRepository(s.Tasks, client, cfg.Cache.TTL, logger)
		}
	}

	return s, nil
}

// RegisterChecks adds the store's health checks to mon.
func (s *Store) RegisterChecks(mon *monitor.Monitor) {
	for name, fn := range s.checks {
		mon.Register(name, fn)
	}
}

// Close releases resources in reverse order of acquisition.
func (s *Store) Close(context.Context) error {
	var result error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].fn(); err != nil {
			result = errors.Join(result, fmt.Errorf("close %s: %w", s.closers[i].name, err))
		}
	}
	s.closers = nil
	return result
}

func (s *Store) addCloser(name string, fn func() error) {
	s.closers = append(s.closers, closer{name: name, fn: fn})
}
