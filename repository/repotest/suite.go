// Package repotest holds the behavioural checks every TaskRepository
// adapter must pass.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/daymate/domain"
	"github.com/fastygo/daymate/repository"
)

// Factory returns an empty repository for a single subtest.
type Factory func(t *testing.T) repository.TaskRepository

// Run exercises the full store contract against repositories built by newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Run("CreateAssignsIdentity", func(t *testing.T) { testCreate(t, newRepo(t)) })
	t.Run("IDsNeverReused", func(t *testing.T) { testIDsNeverReused(t, newRepo(t)) })
	t.Run("EmptyPatchBumpsUpdatedAt", func(t *testing.T) { testEmptyPatch(t, newRepo(t)) })
	t.Run("PartialUpdate", func(t *testing.T) { testPartialUpdate(t, newRepo(t)) })
	t.Run("UpdateMissing", func(t *testing.T) { testUpdateMissing(t, newRepo(t)) })
	t.Run("DeleteThenGet", func(t *testing.T) { testDeleteThenGet(t, newRepo(t)) })
	t.Run("CompleteMany", func(t *testing.T) { testCompleteMany(t, newRepo(t)) })
	t.Run("DeleteCompleted", func(t *testing.T) { testDeleteCompleted(t, newRepo(t)) })
	t.Run("ListFilters", func(t *testing.T) { testListFilters(t, newRepo(t)) })
	t.Run("ListSorting", func(t *testing.T) { testListSorting(t, newRepo(t)) })
}

// NewTask builds a valid task with defaults applied.
func NewTask(title string, priority domain.Priority) *domain.Task {
	return &domain.Task{
		Title:    title,
		Priority: priority,
		Category: domain.DefaultCategory,
	}
}

// Day returns a UTC calendar day offset from a fixed reference date.
func Day(offset int) *time.Time {
	d := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	return &d
}

func mustCreate(t *testing.T, repo repository.TaskRepository, task *domain.Task) *domain.Task {
	t.Helper()
	created, err := repo.Create(context.Background(), task)
	require.NoError(t, err)
	return created
}

func testCreate(t *testing.T, repo repository.TaskRepository) {
	ctx := context.Background()
	task := NewTask("Buy milk", domain.PriorityHigh)
	task.DueDate = Day(1)

	created := mustCreate(t, repo, task)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", fetched.Title)
	assert.Equal(t, domain.PriorityHigh, fetched.Priority)
	assert.Equal(t, domain.DefaultCategory, fetched.Category)
	assert.False(t, fetched.Completed)
	require.NotNil(t, fetched.DueDate)
	assert.True(t, Day(1).Equal(*fetched.DueDate))
	assert.True(t, created.CreatedAt.Equal(fetched.CreatedAt))
}

func testIDsNeverReused(t *testing.T, repo repository.TaskRepository) {
	ctx := context.Background()
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		created := mustCreate(t, repo, NewTask("task", domain.PriorityLow))
		require.False(t, seen[created.ID], "id %s reused", created.ID)
		seen[created.ID] = true
		if i%2 == 0 {
			_, err := repo.Delete(ctx, created.ID)
			require.NoError(t, err)
		}
	}
}

func testEmptyPatch(t *testing.T, repo repository.TaskRepository) {
	ctx := context.Background()
	created := mustCreate(t, repo, NewTask("stable", domain.PriorityMedium))

	updated, err := repo.Update(ctx, created.ID, domain.TaskPatch{})
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Priority, updated.Priority)
	assert.Equal(t, created.Category, updated.Category)
	assert.Equal(t, created.Completed, updated.Completed)
}

func testPartialUpdate(t *testing.T, repo repository.TaskRepository) {
	ctx := context.Background()
	task := NewTask("write report", domain.PriorityLow)
	task.Description = "quarterly"
	task.DueDate = Day(2)
	created := mustCreate(t, repo, task)

	completed := true
	high := domain.PriorityHigh
	updated, err := repo.Update(ctx, created.ID, domain.TaskPatch{Completed: &completed, Priority: &high})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, domain.PriorityHigh, updated.Priority)
	assert.Equal(t, "write report", updated.Title)
	assert.Equal(t, "quarterly", updated.Description)
	require.NotNil(t, updated.DueDate)

	updated, err = repo.Update(ctx, created.ID, domain.TaskPatch{DueDateSet: true})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)

	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.DueDate)
	assert.True(t, fetched.Completed)
	assert.False(t, fetched.UpdatedAt.Before(fetched.CreatedAt))
}

func testUpdateMissing(t *testing.T, repo repository.TaskRepository) {
	_, err := repo.Update(context.Background(), "0192f0a4-0000-7000-8000-000000000000", domain.TaskPatch{})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func testDeleteThenGet(t *testing.T, repo repository.TaskRepository) {
	ctx := context.Background()
	created := mustCreate(t, repo, NewTask("ephemeral", domain.PriorityMedium))

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)
	assert.Equal(t, "ephemeral", deleted.Title)

	_, err = repo.GetByID(ctx, created.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	_, err = repo.Delete(ctx, created.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	tasks, err := repo.List(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func testCompleteMany(t *testing.T, repo repository.TaskRepository) {
	ctx := context.Background()
	a := mustCreate(t, repo, NewTask("a", domain.PriorityLow))
	b := mustCreate(t, repo, NewTask("b", domain.PriorityLow))
	c := mustCreate(t, repo, NewTask("c", domain.PriorityLow))

	done := true
	_, err := repo.Update(ctx, b.ID, domain.TaskPatch{Completed: &done})
	require.NoError(t, err)

	count, err := repo.CompleteMany(ctx, []string{a.ID, b.ID, "0192f0a4-0000-7000-8000-000000000000"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	fetched, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Completed)
	assert.True(t, fetched.UpdatedAt.After(a.UpdatedAt))

	fetched, err = repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, fetched.Completed)
}

func testDeleteCompleted(t *testing.T, repo repository.TaskRepository) {
	ctx := context.Background()
	a := mustCreate(t, repo, NewTask("a", domain.PriorityLow))
	b := mustCreate(t, repo, NewTask("b", domain.PriorityLow))
	mustCreate(t, repo, NewTask("c", domain.PriorityLow))

	count, err := repo.CompleteMany(ctx, []string{a.ID, b.ID})
	require.NoError(t, err)
	require.Equal(t, 2, count)

	deleted, err := repo.DeleteCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	done := true
	tasks, err := repo.List(ctx, repository.TaskFilter{Completed: &done})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	all, err := repo.List(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testListFilters(t *testing.T, repo repository.TaskRepository) {
	ctx := context.Background()
	work := NewTask("report", domain.PriorityHigh)
	work.Category = "Work"
	w := mustCreate(t, repo, work)
	mustCreate(t, repo, NewTask("laundry", domain.PriorityLow))
	mustCreate(t, repo, NewTask("groceries", domain.PriorityHigh))

	done := true
	_, err := repo.Update(ctx, w.ID, domain.TaskPatch{Completed: &done})
	require.NoError(t, err)

	tasks, err := repo.List(ctx, repository.TaskFilter{Priority: domain.PriorityHigh})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	tasks, err = repo.List(ctx, repository.TaskFilter{Category: "Work"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, w.ID, tasks[0].ID)

	notDone := false
	tasks, err = repo.List(ctx, repository.TaskFilter{Completed: &notDone, Priority: domain.PriorityHigh})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "groceries", tasks[0].Title)
}

func testListSorting(t *testing.T, repo repository.TaskRepository) {
	ctx := context.Background()
	titles := func(tasks []domain.Task) []string {
		out := make([]string, 0, len(tasks))
		for _, task := range tasks {
			out = append(out, task.Title)
		}
		return out
	}

	first := NewTask("first", domain.PriorityLow)
	first.DueDate = Day(5)
	mustCreate(t, repo, first)
	time.Sleep(2 * time.Millisecond)

	second := NewTask("second", domain.PriorityHigh)
	mustCreate(t, repo, second)
	time.Sleep(2 * time.Millisecond)

	third := NewTask("third", domain.PriorityMedium)
	third.DueDate = Day(1)
	mustCreate(t, repo, third)

	tasks, err := repo.List(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "second", "first"}, titles(tasks))

	tasks, err = repo.List(ctx, repository.TaskFilter{SortBy: repository.SortByDueDate})
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "first", "second"}, titles(tasks))

	tasks, err = repo.List(ctx, repository.TaskFilter{SortBy: repository.SortByPriority})
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "third", "first"}, titles(tasks))
}
