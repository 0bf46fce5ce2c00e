package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	for _, value := range []string{"Low", "Medium", "High"} {
		p, ok := ParsePriority(value)
		require.True(t, ok, value)
		assert.Equal(t, Priority(value), p)
	}
	for _, value := range []string{"", "high", "Urgent"} {
		_, ok := ParsePriority(value)
		assert.False(t, ok, value)
	}
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
}

func TestTaskTouchIsStrictlyIncreasing(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	task := &Task{}
	task.Touch(now)
	require.Equal(t, now, task.CreatedAt)
	require.Equal(t, now, task.UpdatedAt)

	task.Touch(now)
	assert.True(t, task.UpdatedAt.After(now))
	assert.Equal(t, now, task.CreatedAt)

	earlier := now.Add(-time.Hour)
	prev := task.UpdatedAt
	task.Touch(earlier)
	assert.True(t, task.UpdatedAt.After(prev))
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	yesterday := CalendarDay(now).AddDate(0, 0, -1)
	today := CalendarDay(now)

	task := &Task{DueDate: &yesterday}
	assert.True(t, task.IsOverdue(now))

	task.Completed = true
	assert.False(t, task.IsOverdue(now))

	assert.False(t, (&Task{DueDate: &today}).IsOverdue(now))
	assert.False(t, (&Task{}).IsOverdue(now))
}

func TestTaskApply(t *testing.T) {
	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	task := Task{Title: "old", Priority: PriorityLow, Category: "Work", DueDate: &due}

	title := "new"
	task.Apply(TaskPatch{Title: &title})
	assert.Equal(t, "new", task.Title)
	assert.Equal(t, PriorityLow, task.Priority)
	assert.Equal(t, &due, task.DueDate)

	task.Apply(TaskPatch{DueDateSet: true})
	assert.Nil(t, task.DueDate)
	assert.True(t, TaskPatch{}.IsEmpty())
}

func TestErrorClassification(t *testing.T) {
	err := fmt.Errorf("lookup: %w", ErrTaskNotFound)
	assert.True(t, IsDomainError(err, ErrCodeNotFound))
	assert.False(t, IsDomainError(err, ErrCodeInvalid))

	vErr := NewValidationError(map[string]string{"title": "Task title is required"})
	assert.Equal(t, "Task title is required", FieldErrors(vErr)["title"])
	assert.Contains(t, vErr.Error(), "title: Task title is required")

	cause := errors.New("connection refused")
	uErr := Unavailable(cause)
	assert.True(t, IsDomainError(uErr, ErrCodeUnavailable))
	assert.ErrorIs(t, uErr, cause)
}
