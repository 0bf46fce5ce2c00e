// Package view derives the displayed task list and its statistics from the
// full task collection. Everything here is pure and never fails.
package view

import (
	"slices"
	"strings"
	"time"

	"github.com/fastygo/daymate/domain"
)

// Status narrows the visible tasks by completion state.
type Status string

const (
	StatusAll       Status = "all"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// ParseStatus maps user input to a Status; anything unrecognised means all.
func ParseStatus(value string) Status {
	switch s := Status(strings.ToLower(strings.TrimSpace(value))); s {
	case StatusActive, StatusCompleted:
		return s
	}
	return StatusAll
}

// Params are the user-controlled search and filter inputs.
type Params struct {
	Search string
	Status Status
}

// Item is a task annotated with display-only attributes.
type Item struct {
	domain.Task
	Overdue bool `json:"overdue"`
}

// Stats are computed over the whole collection, ignoring Params.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Active    int `json:"active"`
	Overdue   int `json:"overdue"`
}

// Result is the derived view.
type Result struct {
	Tasks []Item `json:"tasks"`
	Stats Stats  `json:"stats"`
}

// Compute filters, orders and annotates tasks and computes stats as of now.
func Compute(tasks []domain.Task, params Params, now time.Time) Result {
	result := Result{
		Tasks: make([]Item, 0, len(tasks)),
		Stats: ComputeStats(tasks, now),
	}

	search := strings.ToLower(params.Search)
	for i := range tasks {
		task := &tasks[i]
		if !matchesSearch(task, search) || !matchesStatus(task, params.Status) {
			continue
		}
		result.Tasks = append(result.Tasks, Item{Task: *task, Overdue: task.IsOverdue(now)})
	}

	slices.SortStableFunc(result.Tasks, func(a, b Item) int {
		return compareForDisplay(&a.Task, &b.Task)
	})
	return result
}

// ComputeStats counts total, completed, active and overdue tasks.
func ComputeStats(tasks []domain.Task, now time.Time) Stats {
	stats := Stats{Total: len(tasks)}
	for i := range tasks {
		if tasks[i].Completed {
			stats.Completed++
		}
		if tasks[i].IsOverdue(now) {
			stats.Overdue++
		}
	}
	stats.Active = stats.Total - stats.Completed
	return stats
}

func matchesSearch(task *domain.Task, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(task.Title), search) ||
		strings.Contains(strings.ToLower(task.Category), search)
}

func matchesStatus(task *domain.Task, status Status) bool {
	switch status {
	case StatusActive:
		return !task.Completed
	case StatusCompleted:
		return task.Completed
	}
	return true
}

// compareForDisplay orders incomplete before completed, then priority high to
// low, then dated before undated by earliest due date, then newest first.
func compareForDisplay(a, b *domain.Task) int {
	if a.Completed != b.Completed {
		if a.Completed {
			return 1
		}
		return -1
	}
	if c := b.Priority.Rank() - a.Priority.Rank(); c != 0 {
		return c
	}
	switch {
	case a.DueDate != nil && b.DueDate == nil:
		return -1
	case a.DueDate == nil && b.DueDate != nil:
		return 1
	case a.DueDate != nil && b.DueDate != nil:
		if c := a.DueDate.Compare(*b.DueDate); c != 0 {
			return c
		}
	}
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(b.ID, a.ID)
}
