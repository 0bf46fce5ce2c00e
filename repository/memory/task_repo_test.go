package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/daymate/domain"
	"github.com/fastygo/daymate/repository"
	"github.com/fastygo/daymate/repository/repotest"
)

func TestTaskRepositoryContract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.TaskRepository {
		return NewTaskRepository()
	})
}

func TestCreateDoesNotAliasCallerTask(t *testing.T) {
	repo := NewTaskRepository()
	input := repotest.NewTask("original", domain.PriorityLow)
	input.DueDate = repotest.Day(1)

	created, err := repo.Create(context.Background(), input)
	require.NoError(t, err)

	input.Title = "mutated"
	*input.DueDate = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	created.Title = "mutated too"
	*created.DueDate = time.Date(1999, 1, 2, 0, 0, 0, 0, time.UTC)

	fetched, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", fetched.Title)
	assert.Equal(t, *repotest.Day(1), *fetched.DueDate)
	assert.Empty(t, input.ID)

	*fetched.DueDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	listed, err := repo.List(context.Background(), repository.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, *repotest.Day(1), *listed[0].DueDate)

	*listed[0].DueDate = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	refetched, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, *repotest.Day(1), *refetched.DueDate)
}

func TestUpdateDoesNotAliasPatchDueDate(t *testing.T) {
	repo := NewTaskRepository()
	created, err := repo.Create(context.Background(), repotest.NewTask("patched", domain.PriorityLow))
	require.NoError(t, err)

	due := *repotest.Day(3)
	updated, err := repo.Update(context.Background(), created.ID, domain.TaskPatch{DueDateSet: true, DueDate: &due})
	require.NoError(t, err)

	due = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	*updated.DueDate = time.Date(1999, 1, 2, 0, 0, 0, 0, time.UTC)

	fetched, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, *repotest.Day(3), *fetched.DueDate)
}

func TestFrozenClockStillAdvancesUpdatedAt(t *testing.T) {
	frozen := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	repo := newTaskRepository(func() time.Time { return frozen })

	created, err := repo.Create(context.Background(), repotest.NewTask("tick", domain.PriorityLow))
	require.NoError(t, err)

	first, err := repo.Update(context.Background(), created.ID, domain.TaskPatch{})
	require.NoError(t, err)
	second, err := repo.Update(context.Background(), created.ID, domain.TaskPatch{})
	require.NoError(t, err)

	assert.True(t, first.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestConcurrentUpdatesLastWriteWins(t *testing.T) {
	repo := NewTaskRepository()
	created, err := repo.Create(context.Background(), repotest.NewTask("race", domain.PriorityLow))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			done := n%2 == 0
			_, _ = repo.Update(context.Background(), created.ID, domain.TaskPatch{Completed: &done})
		}(i)
	}
	wg.Wait()

	fetched, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, fetched.UpdatedAt.After(created.UpdatedAt))
}
