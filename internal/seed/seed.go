// Package seed resets a task store to the starter tasks shown to new users.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/fastygo/daymate/domain"
	"github.com/fastygo/daymate/pkg/optional"
	"github.com/fastygo/daymate/repository"
	taskUC "github.com/fastygo/daymate/usecase/task"
)

type starter struct {
	title       string
	priority    domain.Priority
	category    string
	dueInDays   int
	completed   bool
	description string
}

var starters = []starter{
	{title: "Welcome to DayMate", priority: domain.PriorityMedium, category: "Getting Started",
		description: "Get started with DayMate and explore its features"},
	{title: "Plan your weekly goals", priority: domain.PriorityHigh, category: "Planning", dueInDays: 1,
		description: "Set up your goals for the upcoming week"},
	{title: "Review completed tasks", priority: domain.PriorityLow, category: "Review",
		description: "Look back at what you've accomplished"},
	{title: "Try the dark theme toggle", priority: domain.PriorityLow, category: "UI", completed: true,
		description: "Test out the dark mode feature"},
	{title: "Set up daily routine", priority: domain.PriorityHigh, category: "Planning", dueInDays: 3,
		description: "Create a consistent daily routine for productivity"},
}

// Result reports what Run changed.
type Result struct {
	Cleared  int
	Inserted []domain.Task
}

// Run deletes every existing task and inserts the starter set. Due dates are
// relative to now.
func Run(ctx context.Context, uc *taskUC.UseCase, now time.Time) (Result, error) {
	var result Result

	existing, err := uc.ListTasks(ctx, repository.TaskFilter{})
	if err != nil {
		return result, fmt.Errorf("list existing tasks: %w", err)
	}
	for _, task := range existing {
		if _, err := uc.DeleteTask(ctx, task.ID); err != nil && !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return result, fmt.Errorf("delete task %s: %w", task.ID, err)
		}
		result.Cleared++
	}

	for _, s := range starters {
		created, err := uc.CreateTask(ctx, s.input(now))
		if err != nil {
			return result, fmt.Errorf("create %q: %w", s.title, err)
		}
		if s.completed {
			created, err = uc.UpdateTask(ctx, created.ID, taskUC.UpdateInput{Completed: optional.Of(true)})
			if err != nil {
				return result, fmt.Errorf("complete %q: %w", s.title, err)
			}
		}
		result.Inserted = append(result.Inserted, *created)
	}
	return result, nil
}

func (s starter) input(now time.Time) taskUC.CreateInput {
	priority := string(s.priority)
	input := taskUC.CreateInput{
		Title:       &s.title,
		Priority:    &priority,
		Category:    &s.category,
		Description: &s.description,
	}
	if s.dueInDays > 0 {
		due := now.AddDate(0, 0, s.dueInDays).Format(time.DateOnly)
		input.DueDate = &due
	}
	return input
}
