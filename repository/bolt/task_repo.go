// Package bolt stores tasks in an embedded bbolt file, one JSON document per
// key inside a single bucket.
package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/daymate/domain"
	"github.com/fastygo/daymate/repository"
)

// Bucket is the bbolt bucket holding task documents.
const Bucket = "tasks"

type taskRepository struct {
	db     *bolt.DB
	bucket []byte
	now    func() time.Time
}

// NewTaskRepository returns a bbolt-backed TaskRepository. The bucket must
// already exist (see infrastructure/bolt.Open).
func NewTaskRepository(db *bolt.DB) repository.TaskRepository {
	return &taskRepository{db: db, bucket: []byte(Bucket), now: time.Now}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to assign task id", err)
	}

	stored := *task
	stored.ID = id.String()
	stored.CreatedAt = time.Time{}
	stored.Touch(r.now())

	err = r.update(ctx, func(b *bolt.Bucket) error {
		return putTask(b, &stored)
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var task *domain.Task
	err := r.view(ctx, func(b *bolt.Bucket) error {
		var err error
		task, err = getTask(b, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	tasks := make([]domain.Task, 0)
	err := r.view(ctx, func(b *bolt.Bucket) error {
		return b.ForEach(func(_, v []byte) error {
			var task domain.Task
			if err := json.Unmarshal(v, &task); err != nil {
				return err
			}
			if filter.Matches(&task) {
				tasks = append(tasks, task)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	repository.SortTasks(tasks, filter.SortBy)
	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	var task *domain.Task
	err := r.update(ctx, func(b *bolt.Bucket) error {
		var err error
		if task, err = getTask(b, id); err != nil {
			return err
		}
		task.Apply(patch)
		task.Touch(r.now())
		return putTask(b, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) (*domain.Task, error) {
	var task *domain.Task
	err := r.update(ctx, func(b *bolt.Bucket) error {
		var err error
		if task, err = getTask(b, id); err != nil {
			return err
		}
		return b.Delete([]byte(id))
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) CompleteMany(ctx context.Context, ids []string) (int, error) {
	modified := 0
	err := r.update(ctx, func(b *bolt.Bucket) error {
		now := r.now()
		for _, id := range ids {
			task, err := getTask(b, id)
			if domain.IsDomainError(err, domain.ErrCodeNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if task.Completed {
				continue
			}
			task.Completed = true
			task.Touch(now)
			if err := putTask(b, task); err != nil {
				return err
			}
			modified++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return modified, nil
}

func (r *taskRepository) DeleteCompleted(ctx context.Context) (int, error) {
	deleted := 0
	err := r.update(ctx, func(b *bolt.Bucket) error {
		var keys [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var task domain.Task
			if err := json.Unmarshal(v, &task); err != nil {
				return err
			}
			if task.Completed {
				keys = append(keys, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		deleted = len(keys)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (r *taskRepository) view(ctx context.Context, fn func(b *bolt.Bucket) error) error {
	if err := ctx.Err(); err != nil {
		return translate(err)
	}
	return translate(r.db.View(func(tx *bolt.Tx) error {
		return fn(tx.Bucket(r.bucket))
	}))
}

func (r *taskRepository) update(ctx context.Context, fn func(b *bolt.Bucket) error) error {
	if err := ctx.Err(); err != nil {
		return translate(err)
	}
	return translate(r.db.Update(func(tx *bolt.Tx) error {
		return fn(tx.Bucket(r.bucket))
	}))
}

func getTask(b *bolt.Bucket, id string) (*domain.Task, error) {
	raw := b.Get([]byte(id))
	if raw == nil {
		return nil, domain.ErrTaskNotFound
	}
	var task domain.Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func putTask(b *bolt.Bucket, task *domain.Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return b.Put([]byte(task.ID), payload)
}

// translate leaves domain errors untouched and reports everything else,
// cancellation included, as an unavailable store.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return err
	}
	return domain.Unavailable(err)
}
