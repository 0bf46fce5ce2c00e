package task

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fastygo/daymate/domain"
	"github.com/fastygo/daymate/pkg/optional"
)

// CreateInput is an unvalidated creation payload. Nil fields were absent or
// null and fall back to their defaults.
type CreateInput struct {
	Title       *string `json:"title"`
	Priority    *string `json:"priority"`
	Category    *string `json:"category"`
	DueDate     *string `json:"dueDate"`
	Description *string `json:"description"`
}

// UpdateInput is an unvalidated partial update.
type UpdateInput struct {
	Title       optional.Value[string] `json:"title,omitzero"`
	Completed   optional.Value[bool]   `json:"completed,omitzero"`
	Priority    optional.Value[string] `json:"priority,omitzero"`
	Category    optional.Value[string] `json:"category,omitzero"`
	DueDate     optional.Value[string] `json:"dueDate,omitzero"`
	Description optional.Value[string] `json:"description,omitzero"`
}

const (
	msgTitleRequired   = "Task title is required"
	msgTitleTooLong    = "Task title cannot exceed 200 characters"
	msgCategoryTooLong = "Category cannot exceed 50 characters"
	msgDescTooLong     = "Description cannot exceed 1000 characters"
	msgPriority        = "Priority must be one of Low, Medium, High"
	msgDueDate         = "Due date must be a valid date (YYYY-MM-DD)"
	msgCompleted       = "Completed must be true or false"
)

// Validator normalizes and checks task input. Every failing field is
// reported, not only the first.
type Validator struct{}

// ValidateCreate produces a new, not yet persisted task from input.
func (Validator) ValidateCreate(input CreateInput) (*domain.Task, error) {
	errs := fieldErrors{}
	task := &domain.Task{
		Priority: domain.DefaultPriority,
		Category: domain.DefaultCategory,
	}

	if input.Title == nil {
		errs.add("title", msgTitleRequired)
	} else if title, ok := checkTitle(*input.Title, errs); ok {
		task.Title = title
	}

	if input.Priority != nil && *input.Priority != "" {
		if p, ok := domain.ParsePriority(*input.Priority); ok {
			task.Priority = p
		} else {
			errs.add("priority", msgPriority)
		}
	}

	if input.Category != nil {
		task.Category = checkCategory(*input.Category, errs)
	}

	if input.DueDate != nil {
		due, err := ParseDueDate(*input.DueDate)
		if err != nil {
			errs.add("dueDate", msgDueDate)
		}
		task.DueDate = due
	}

	if input.Description != nil {
		task.Description = checkDescription(*input.Description, errs)
	}

	if err := errs.err(); err != nil {
		return nil, err
	}
	return task, nil
}

// ValidatePatch turns input into a patch. A null category or description
// resets the field to its default; a null title or completed flag is
// rejected; a null due date clears it.
func (Validator) ValidatePatch(input UpdateInput) (domain.TaskPatch, error) {
	errs := fieldErrors{}
	var patch domain.TaskPatch

	if input.Title.Set {
		if input.Title.Null {
			errs.add("title", msgTitleRequired)
		} else if title, ok := checkTitle(input.Title.Value, errs); ok {
			patch.Title = &title
		}
	}

	if input.Completed.Set {
		if input.Completed.Null {
			errs.add("completed", msgCompleted)
		} else {
			patch.Completed = input.Completed.Ptr()
		}
	}

	if input.Priority.Set {
		if p, ok := domain.ParsePriority(input.Priority.Value); ok && !input.Priority.Null {
			patch.Priority = &p
		} else {
			errs.add("priority", msgPriority)
		}
	}

	if input.Category.Set {
		category := checkCategory(input.Category.Value, errs)
		patch.Category = &category
	}

	if input.DueDate.Set {
		patch.DueDateSet = true
		if !input.DueDate.Null {
			due, err := ParseDueDate(input.DueDate.Value)
			if err != nil {
				errs.add("dueDate", msgDueDate)
			}
			patch.DueDate = due
		}
	}

	if input.Description.Set {
		description := checkDescription(input.Description.Value, errs)
		patch.Description = &description
	}

	if err := errs.err(); err != nil {
		return domain.TaskPatch{}, err
	}
	return patch, nil
}

// ParseDueDate accepts a calendar date or an RFC 3339 timestamp and returns
// the calendar day it names. An empty string means no due date.
func ParseDueDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		day := domain.CalendarDay(t)
		return &day, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil, err
	}
	day := domain.CalendarDay(t)
	return &day, nil
}

func checkTitle(raw string, errs fieldErrors) (string, bool) {
	title := strings.TrimSpace(raw)
	switch {
	case title == "":
		errs.add("title", msgTitleRequired)
		return "", false
	case utf8.RuneCountInString(title) > domain.MaxTitleLength:
		errs.add("title", msgTitleTooLong)
		return "", false
	}
	return title, true
}

func checkCategory(raw string, errs fieldErrors) string {
	category := strings.TrimSpace(raw)
	if category == "" {
		return domain.DefaultCategory
	}
	if utf8.RuneCountInString(category) > domain.MaxCategoryLength {
		errs.add("category", msgCategoryTooLong)
	}
	return category
}

func checkDescription(raw string, errs fieldErrors) string {
	description := strings.TrimSpace(raw)
	if utf8.RuneCountInString(description) > domain.MaxDescriptionLength {
		errs.add("description", msgDescTooLong)
	}
	return description
}

type fieldErrors map[string]string

// add keeps the first message recorded for a field.
func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return domain.NewValidationError(f)
}
