package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/daymate/domain"
	"github.com/fastygo/daymate/repository"
)

const (
	defaultPrefix = "task:"

	// markerTTL bounds how long a write keeps read-through fills out of a key.
	markerTTL = 30 * time.Second

	markerDeleted = "!deleted"
	markerStale   = "!stale"
)

type entryState int

const (
	entryMiss entryState = iota
	entryHit
	entryDeleted
)

type cachedTaskRepository struct {
	inner  repository.TaskRepository
	client redislib.UniversalClient
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedTaskRepository wraps inner with a read-through Redis cache for
// single task lookups. Writes replace cached entries with short-lived markers
// and only reads fill the cache, using SETNX so a fill never overwrites a
// marker. Cache faults are logged and never fail the call.
func NewCachedTaskRepository(inner repository.TaskRepository, client redislib.UniversalClient, ttl time.Duration, logger *zap.Logger) repository.TaskRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cachedTaskRepository{
		inner:  inner,
		client: client,
		prefix: defaultPrefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *cachedTaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	created, err := r.inner.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	r.fill(ctx, created)
	return created, nil
}

func (r *cachedTaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	task, state := r.load(ctx, id)
	switch state {
	case entryHit:
		return task, nil
	case entryDeleted:
		return nil, domain.ErrTaskNotFound
	}
	task, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.fill(ctx, task)
	return task, nil
}

func (r *cachedTaskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	return r.inner.List(ctx, filter)
}

func (r *cachedTaskRepository) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	updated, err := r.inner.Update(ctx, id, patch)
	r.mark(ctx, markerStale, id)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *cachedTaskRepository) Delete(ctx context.Context, id string) (*domain.Task, error) {
	deleted, err := r.inner.Delete(ctx, id)
	if err == nil || domain.IsDomainError(err, domain.ErrCodeNotFound) {
		r.mark(ctx, markerDeleted, id)
	}
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (r *cachedTaskRepository) CompleteMany(ctx context.Context, ids []string) (int, error) {
	count, err := r.inner.CompleteMany(ctx, ids)
	r.mark(ctx, markerStale, ids...)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteCompleted marks every task that was completed before the delete.
// Tasks completed afterwards went through Update or CompleteMany and already
// carry a marker.
func (r *cachedTaskRepository) DeleteCompleted(ctx context.Context) (int, error) {
	completed := true
	candidates, err := r.inner.List(ctx, repository.TaskFilter{Completed: &completed})
	if err != nil {
		return 0, err
	}
	count, err := r.inner.DeleteCompleted(ctx)
	ids := make([]string, 0, len(candidates))
	for i := range candidates {
		ids = append(ids, candidates[i].ID)
	}
	r.mark(ctx, markerStale, ids...)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *cachedTaskRepository) load(ctx context.Context, id string) (*domain.Task, entryState) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redislib.Nil) {
			r.logger.Warn("task cache read failed", zap.String("task_id", id), zap.Error(err))
		}
		return nil, entryMiss
	}
	switch string(data) {
	case markerDeleted:
		return nil, entryDeleted
	case markerStale:
		return nil, entryMiss
	}
	var task domain.Task
	if err := json.Unmarshal(data, &task); err != nil {
		r.logger.Warn("task cache entry corrupt", zap.String("task_id", id), zap.Error(err))
		r.mark(ctx, markerStale, id)
		return nil, entryMiss
	}
	return &task, entryHit
}

// fill caches task unless the key already holds an entry or a marker.
func (r *cachedTaskRepository) fill(ctx context.Context, task *domain.Task) {
	payload, err := json.Marshal(task)
	if err != nil {
		return
	}
	if err := r.client.SetNX(ctx, r.key(task.ID), payload, r.ttl).Err(); err != nil {
		r.logger.Warn("task cache write failed", zap.String("task_id", task.ID), zap.Error(err))
	}
}

func (r *cachedTaskRepository) mark(ctx context.Context, marker string, ids ...string) {
	if len(ids) == 0 {
		return
	}
	_, err := r.client.Pipelined(ctx, func(pipe redislib.Pipeliner) error {
		for _, id := range ids {
			pipe.Set(ctx, r.key(id), marker, markerTTL)
		}
		return nil
	})
	if err != nil {
		r.logger.Warn("task cache invalidation failed", zap.Int("keys", len(ids)), zap.Error(err))
	}
}

func (r *cachedTaskRepository) key(id string) string {
	return r.prefix + id
}
