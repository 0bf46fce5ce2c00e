package task

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fastygo/daymate/domain"
	"github.com/fastygo/daymate/pkg/logger"
	"github.com/fastygo/daymate/repository"
	"github.com/fastygo/daymate/usecase/view"
)

const tracerName = "github.com/fastygo/daymate/usecase/task"

type UseCase struct {
	tasks     repository.TaskRepository
	validator Validator
	logger    *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// Option customises a UseCase.
type Option func(*UseCase)

// WithClock overrides the time source used for overdue computations.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

// WithTracer overrides the global tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(uc *UseCase) {
		if tracer != nil {
			uc.tracer = tracer
		}
	}
}

func New(tasks repository.TaskRepository, logger *zap.Logger, opts ...Option) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &UseCase{
		tasks:  tasks,
		logger: logger,
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *UseCase) ListTasks(ctx context.Context, filter repository.TaskFilter) (_ []domain.Task, err error) {
	ctx, span := uc.tracer.Start(ctx, "task.List")
	defer func() { finish(span, err) }()

	tasks, err := uc.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	return tasks, nil
}

func (uc *UseCase) GetTask(ctx context.Context, id string) (_ *domain.Task, err error) {
	ctx, span := uc.tracer.Start(ctx, "task.Get", trace.WithAttributes(attribute.String("task.id", id)))
	defer func() { finish(span, err) }()

	if err := checkID(id); err != nil {
		return nil, err
	}
	return uc.tasks.GetByID(ctx, id)
}

func (uc *UseCase) CreateTask(ctx context.Context, input CreateInput) (_ *domain.Task, err error) {
	ctx, span := uc.tracer.Start(ctx, "task.Create")
	defer func() { finish(span, err) }()

	task, err := uc.validator.ValidateCreate(input)
	if err != nil {
		return nil, err
	}
	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("task.id", created.ID))
	logger.WithRequestID(ctx, uc.logger).Info("task created",
		zap.String("task_id", created.ID),
		zap.String("priority", string(created.Priority)),
	)
	return created, nil
}

// UpdateTask validates input before looking the task up, so an invalid
// payload is reported even for a missing id.
func (uc *UseCase) UpdateTask(ctx context.Context, id string, input UpdateInput) (_ *domain.Task, err error) {
	ctx, span := uc.tracer.Start(ctx, "task.Update", trace.WithAttributes(attribute.String("task.id", id)))
	defer func() { finish(span, err) }()

	if err := checkID(id); err != nil {
		return nil, err
	}
	patch, err := uc.validator.ValidatePatch(input)
	if err != nil {
		return nil, err
	}
	updated, err := uc.tasks.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("task updated", zap.String("task_id", id))
	return updated, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, id string) (_ *domain.Task, err error) {
	ctx, span := uc.tracer.Start(ctx, "task.Delete", trace.WithAttributes(attribute.String("task.id", id)))
	defer func() { finish(span, err) }()

	if err := checkID(id); err != nil {
		return nil, err
	}
	deleted, err := uc.tasks.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("task deleted", zap.String("task_id", id))
	return deleted, nil
}

// CompleteTasks marks the listed tasks completed and returns how many changed
// state. Ids that are malformed or unknown are skipped.
func (uc *UseCase) CompleteTasks(ctx context.Context, ids []string) (_ int, err error) {
	ctx, span := uc.tracer.Start(ctx, "task.CompleteMany", trace.WithAttributes(attribute.Int("task.requested", len(ids))))
	defer func() { finish(span, err) }()

	if len(ids) == 0 {
		return 0, domain.NewValidationError(map[string]string{"ids": "ids must be a non-empty array"})
	}
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if checkID(id) == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return 0, nil
	}
	count, err := uc.tasks.CompleteMany(ctx, valid)
	if err != nil {
		return 0, err
	}
	span.SetAttributes(attribute.Int("task.completed", count))
	logger.WithRequestID(ctx, uc.logger).Info("tasks completed", zap.Int("count", count))
	return count, nil
}

func (uc *UseCase) DeleteCompletedTasks(ctx context.Context) (_ int, err error) {
	ctx, span := uc.tracer.Start(ctx, "task.DeleteCompleted")
	defer func() { finish(span, err) }()

	count, err := uc.tasks.DeleteCompleted(ctx)
	if err != nil {
		return 0, err
	}
	span.SetAttributes(attribute.Int("task.deleted", count))
	logger.WithRequestID(ctx, uc.logger).Info("completed tasks deleted", zap.Int("count", count))
	return count, nil
}

// View loads the whole collection and derives the display list and stats.
func (uc *UseCase) View(ctx context.Context, params view.Params) (_ view.Result, err error) {
	ctx, span := uc.tracer.Start(ctx, "task.View")
	defer func() { finish(span, err) }()

	tasks, err := uc.tasks.List(ctx, repository.TaskFilter{})
	if err != nil {
		return view.Result{}, err
	}
	return view.Compute(tasks, params, uc.now()), nil
}

// Stats summarises the whole collection.
func (uc *UseCase) Stats(ctx context.Context) (view.Stats, error) {
	tasks, err := uc.ListTasks(ctx, repository.TaskFilter{})
	if err != nil {
		return view.Stats{}, err
	}
	return view.ComputeStats(tasks, uc.now()), nil
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrMalformedTaskID
	}
	return nil
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

