// Package memory provides an in-process task store for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/daymate/domain"
	"github.com/fastygo/daymate/repository"
)

type taskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task
	now   func() time.Time
}

// NewTaskRepository returns an empty in-memory TaskRepository.
func NewTaskRepository() repository.TaskRepository {
	return newTaskRepository(time.Now)
}

func newTaskRepository(now func() time.Time) *taskRepository {
	return &taskRepository{
		tasks: make(map[string]*domain.Task),
		now:   now,
	}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to assign task id", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := clone(task)
	stored.ID = id.String()
	stored.CreatedAt = time.Time{}
	stored.Touch(r.now())
	r.tasks[stored.ID] = &stored

	out := clone(&stored)
	return &out, nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	out := clone(task)
	return &out, nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.mu.RLock()
	tasks := make([]domain.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		if filter.Matches(task) {
			tasks = append(tasks, clone(task))
		}
	}
	r.mu.RUnlock()

	repository.SortTasks(tasks, filter.SortBy)
	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	task.Apply(patch)
	if patch.DueDateSet && task.DueDate != nil {
		due := *task.DueDate
		task.DueDate = &due
	}
	task.Touch(r.now())

	out := clone(task)
	return &out, nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return task, nil
}

func (r *taskRepository) CompleteMany(ctx context.Context, ids []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	modified := 0
	for _, id := range ids {
		task, ok := r.tasks[id]
		if !ok || task.Completed {
			continue
		}
		task.Completed = true
		task.Touch(now)
		modified++
	}
	return modified, nil
}

func (r *taskRepository) DeleteCompleted(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for id, task := range r.tasks {
		if task.Completed {
			delete(r.tasks, id)
			deleted++
		}
	}
	return deleted, nil
}

// clone copies task including the due date it points to.
func clone(task *domain.Task) domain.Task {
	out := *task
	if task.DueDate != nil {
		due := *task.DueDate
		out.DueDate = &due
	}
	return out
}
