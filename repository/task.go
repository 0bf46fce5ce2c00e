package repository

import (
	"context"
	"slices"
	"strings"

	"github.com/fastygo/daymate/domain"
)

// SortKey selects the ordering of List results.
type SortKey string

const (
	SortByCreatedAt SortKey = "createdAt"
	SortByDueDate   SortKey = "dueDate"
	SortByPriority  SortKey = "priority"
)

// ParseSortKey maps a query value to a sort key; unknown values fall back to
// newest-first.
func ParseSortKey(value string) SortKey {
	switch SortKey(value) {
	case SortByDueDate:
		return SortByDueDate
	case SortByPriority:
		return SortByPriority
	}
	return SortByCreatedAt
}

// TaskFilter narrows List results. Zero values mean "no filter".
type TaskFilter struct {
	Completed *bool
	Priority  domain.Priority
	Category  string
	SortBy    SortKey
}

// Matches reports whether task passes every equality filter.
func (f TaskFilter) Matches(task *domain.Task) bool {
	if f.Completed != nil && task.Completed != *f.Completed {
		return false
	}
	if f.Priority != "" && task.Priority != f.Priority {
		return false
	}
	if f.Category != "" && task.Category != f.Category {
		return false
	}
	return true
}

// TaskRepository is the task store contract shared by every adapter.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id string) (*domain.Task, error)
	CompleteMany(ctx context.Context, ids []string) (int, error)
	DeleteCompleted(ctx context.Context) (int, error)
}

// SortTasks orders tasks in place the way List must return them. Adapters
// that cannot sort natively use it after filtering.
func SortTasks(tasks []domain.Task, key SortKey) {
	slices.SortStableFunc(tasks, func(a, b domain.Task) int {
		switch key {
		case SortByDueDate:
			if c := compareDueDates(a, b); c != 0 {
				return c
			}
		case SortByPriority:
			if c := b.Priority.Rank() - a.Priority.Rank(); c != 0 {
				return c
			}
		}
		return compareNewestFirst(a, b)
	})
}

// compareDueDates puts dated tasks first, earliest due date first.
func compareDueDates(a, b domain.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	}
	return a.DueDate.Compare(*b.DueDate)
}

// compareNewestFirst breaks createdAt ties by id, which is time-ordered.
func compareNewestFirst(a, b domain.Task) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(b.ID, a.ID)
}
