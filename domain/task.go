package domain

import "time"

// Priority ranks how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

const (
	DefaultPriority = PriorityMedium
	DefaultCategory = "General"

	MaxTitleLength       = 200
	MaxCategoryLength    = 50
	MaxDescriptionLength = 1000
)

// ParsePriority reports whether value names one of the three priorities.
// Matching is case-sensitive.
func ParsePriority(value string) (Priority, bool) {
	switch p := Priority(value); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, true
	}
	return "", false
}

// Rank orders priorities so that High > Medium > Low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Task is a single to-do record.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority"`
	Category    string     `json:"category"`
	DueDate     *time.Time `json:"dueDate"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Touch refreshes UpdatedAt, keeping it strictly increasing even when the
// clock has not advanced since the last mutation.
func (t *Task) Touch(now time.Time) {
	if t == nil {
		return
	}
	now = now.UTC().Truncate(time.Microsecond)
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
		t.UpdatedAt = now
		return
	}
	if !now.After(t.UpdatedAt) {
		now = t.UpdatedAt.Add(time.Microsecond)
	}
	t.UpdatedAt = now
}

// IsOverdue reports whether the task is incomplete and due on a calendar day
// before the day of now. Due dates are calendar days, so a task due today is
// never overdue.
func (t *Task) IsOverdue(now time.Time) bool {
	if t == nil || t.Completed || t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(CalendarDay(now))
}

// Apply copies every field set in the patch onto the task. It does not touch
// identity or timestamps.
func (t *Task) Apply(patch TaskPatch) {
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.DueDateSet {
		t.DueDate = patch.DueDate
	}
}

// TaskPatch is a validated partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Completed   *bool
	Priority    *Priority
	Category    *string
	Description *string
	// DueDateSet distinguishes "clear the due date" (DueDate nil) from
	// "leave it alone".
	DueDateSet bool
	DueDate    *time.Time
}

// IsEmpty reports whether the patch changes no field.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Completed == nil && p.Priority == nil &&
		p.Category == nil && p.Description == nil && !p.DueDateSet
}

// CalendarDay returns midnight UTC of the calendar day t falls on in its own
// location.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
