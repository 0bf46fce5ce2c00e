package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fastygo/daymate/domain"
	"github.com/fastygo/daymate/repository"
	"github.com/fastygo/daymate/repository/memory"
	taskUC "github.com/fastygo/daymate/usecase/task"
)

func TestRunReplacesExistingTasks(t *testing.T) {
	ctx := context.Background()
	uc := taskUC.New(memory.NewTaskRepository(), zap.NewNop())
	title := "old"
	_, err := uc.CreateTask(ctx, taskUC.CreateInput{Title: &title})
	require.NoError(t, err)

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	result, err := Run(ctx, uc, now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Cleared)
	require.Len(t, result.Inserted, 5)

	tasks, err := uc.ListTasks(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, tasks, 5)

	byTitle := map[string]domain.Task{}
	for _, task := range tasks {
		byTitle[task.Title] = task
	}
	assert.NotContains(t, byTitle, "old")

	weekly := byTitle["Plan your weekly goals"]
	require.NotNil(t, weekly.DueDate)
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), *weekly.DueDate)
	assert.Equal(t, domain.PriorityHigh, weekly.Priority)

	routine := byTitle["Set up daily routine"]
	require.NotNil(t, routine.DueDate)
	assert.Equal(t, time.Date(2026, 10, 22, 0, 0, 0, 0, time.UTC), *routine.DueDate)

	assert.True(t, byTitle["Try the dark theme toggle"].Completed)
	assert.Nil(t, byTitle["Welcome to DayMate"].DueDate)
	assert.Equal(t, "Getting Started", byTitle["Welcome to DayMate"].Category)
}

func TestRunIsRepeatable(t *testing.T) {
	ctx := context.Background()
	uc := taskUC.New(memory.NewTaskRepository(), zap.NewNop())
	now := time.Now()

	_, err := Run(ctx, uc, now)
	require.NoError(t, err)
	result, err := Run(ctx, uc, now)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Cleared)
	assert.Len(t, result.Inserted, 5)
}
