package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/daymate/domain"
	"github.com/fastygo/daymate/repository"
)

const taskColumns = `id::text, title, completed, priority, category, due_date, description, created_at, updated_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrMalformedTaskID
	}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.pool.QueryRow(ctx, query, id))
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE ($1::boolean IS NULL OR completed = $1)
	  AND ($2 = '' OR priority = $2)
	  AND ($3 = '' OR category = $3)
	ORDER BY ` + orderBy(filter.SortBy)

	rows, err := r.pool.Query(ctx, query, filter.Completed, string(filter.Priority), filter.Category)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, translateError(rows.Err())
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to assign task id", err)
	}

	query := `
	INSERT INTO tasks (id, title, completed, priority, category, due_date, description)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING ` + taskColumns

	return scanTask(r.pool.QueryRow(ctx, query,
		id.String(),
		task.Title,
		task.Completed,
		string(task.Priority),
		task.Category,
		task.DueDate,
		task.Description,
	))
}

func (r *taskRepository) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrMalformedTaskID
	}

	args := []any{id}
	sets := make([]string, 0, 7)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Completed != nil {
		set("completed", *patch.Completed)
	}
	if patch.Priority != nil {
		set("priority", string(*patch.Priority))
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.DueDateSet {
		set("due_date", patch.DueDate)
	}
	sets = append(sets, touchUpdatedAt)

	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + taskColumns
	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

func (r *taskRepository) Delete(ctx context.Context, id string) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrMalformedTaskID
	}
	query := `DELETE FROM tasks WHERE id = $1 RETURNING ` + taskColumns
	return scanTask(r.pool.QueryRow(ctx, query, id))
}

func (r *taskRepository) CompleteMany(ctx context.Context, ids []string) (int, error) {
	ids = validIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	query := `
	UPDATE tasks
	SET completed = TRUE, ` + touchUpdatedAt + `
	WHERE id = ANY(SELECT unnest($1::text[])::uuid)
	  AND completed = FALSE
	`
	tag, err := r.pool.Exec(ctx, query, ids)
	if err != nil {
		return 0, translateError(err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *taskRepository) DeleteCompleted(ctx context.Context) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE completed = TRUE`)
	if err != nil {
		return 0, translateError(err)
	}
	return int(tag.RowsAffected()), nil
}

// touchUpdatedAt keeps updated_at strictly increasing within one transaction
// timestamp.
const touchUpdatedAt = `updated_at = GREATEST(NOW(), updated_at + INTERVAL '1 microsecond')`

func orderBy(key repository.SortKey) string {
	switch key {
	case repository.SortByDueDate:
		return `due_date ASC NULLS LAST, created_at DESC, id DESC`
	case repository.SortByPriority:
		return `CASE priority WHEN 'High' THEN 3 WHEN 'Medium' THEN 2 ELSE 1 END DESC, created_at DESC, id DESC`
	default:
		return `created_at DESC, id DESC`
	}
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		task     domain.Task
		priority string
	)
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Completed,
		&priority,
		&task.Category,
		&task.DueDate,
		&task.Description,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, translateError(err)
	}

	task.Priority = domain.Priority(priority)
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	if task.DueDate != nil {
		day := domain.CalendarDay(*task.DueDate)
		task.DueDate = &day
	}
	return &task, nil
}
