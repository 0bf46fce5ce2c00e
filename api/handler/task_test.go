package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/daymate/api/handler"
	"github.com/fastygo/daymate/domain"
	"github.com/fastygo/daymate/internal/infrastructure/monitor"
	"github.com/fastygo/daymate/internal/router"
	"github.com/fastygo/daymate/pkg/httpcontext"
	"github.com/fastygo/daymate/repository"
	"github.com/fastygo/daymate/repository/memory"
	taskUC "github.com/fastygo/daymate/usecase/task"
)

type server struct {
	t       *testing.T
	handler fasthttp.RequestHandler
	monitor *monitor.Monitor
}

func newServer(t *testing.T, repo repository.TaskRepository) *server {
	t.Helper()
	if repo == nil {
		repo = memory.NewTaskRepository()
	}
	adapter := httpcontext.NewAdapter(0)
	mon := monitor.New(0, zap.NewNop())
	handlers := router.Handlers{
		Task:   apiHandler.NewTaskHandler(taskUC.New(repo, zap.NewNop()), adapter, zap.NewNop()),
		Health: apiHandler.NewHealthHandler(mon, adapter, zap.NewNop()),
	}
	return &server{t: t, handler: router.New(handlers, nil).Handler, monitor: mon}
}

func (s *server) do(method, path, body string) (int, []byte) {
	s.t.Helper()
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != "" {
		ctx.Request.Header.SetContentType("application/json")
		ctx.Request.SetBodyString(body)
	}
	s.handler(ctx)
	return ctx.Response.StatusCode(), append([]byte(nil), ctx.Response.Body()...)
}

func (s *server) create(body string) domain.Task {
	s.t.Helper()
	status, raw := s.do(http.MethodPost, "/api/v1/tasks", body)
	require.Equal(s.t, http.StatusCreated, status, string(raw))
	var task domain.Task
	require.NoError(s.t, json.Unmarshal(raw, &task))
	return task
}

type errorBody struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details"`
}

func decodeError(t *testing.T, raw []byte) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestCreateAppliesDefaults(t *testing.T) {
	s := newServer(t, nil)
	task := s.create(`{"title":"Buy milk"}`)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.False(t, task.Completed)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	assert.Equal(t, "General", task.Category)
	assert.Nil(t, task.DueDate)
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
}

func TestCreateValidation(t *testing.T) {
	s := newServer(t, nil)

	status, raw := s.do(http.MethodPost, "/api/v1/tasks", `{"title":"   "}`)
	assert.Equal(t, http.StatusBadRequest, status)
	body := decodeError(t, raw)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	assert.Contains(t, body.Details, "title")

	status, raw = s.do(http.MethodPost, "/api/v1/tasks", `{"title":"x","priority":"urgent"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, decodeError(t, raw).Details, "priority")

	status, _ = s.do(http.MethodPost, "/api/v1/tasks", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, raw = s.do(http.MethodGet, "/api/v1/tasks", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestGetUpdateDelete(t *testing.T) {
	s := newServer(t, nil)
	task := s.create(`{"title":"Draft","dueDate":"2026-10-25"}`)
	path := "/api/v1/tasks/" + task.ID

	status, raw := s.do(http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, status)
	var fetched domain.Task
	require.NoError(t, json.Unmarshal(raw, &fetched))
	assert.Equal(t, task.ID, fetched.ID)

	status, raw = s.do(http.MethodPatch, path, `{"completed":true,"dueDate":null}`)
	require.Equal(t, http.StatusOK, status, string(raw))
	var updated domain.Task
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.True(t, updated.Completed)
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, "Draft", updated.Title)
	assert.True(t, updated.UpdatedAt.After(task.UpdatedAt))

	status, raw = s.do(http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, status)
	var deleted struct {
		Success     bool        `json:"success"`
		Message     string      `json:"message"`
		DeletedTask domain.Task `json:"deletedTask"`
	}
	require.NoError(t, json.Unmarshal(raw, &deleted))
	assert.True(t, deleted.Success)
	assert.Equal(t, "Task deleted successfully", deleted.Message)
	assert.Equal(t, task.ID, deleted.DeletedTask.ID)

	status, raw = s.do(http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Task not found", decodeError(t, raw).Error)
}

func TestMalformedAndUnknownIDs(t *testing.T) {
	s := newServer(t, nil)

	status, raw := s.do(http.MethodGet, "/api/v1/tasks/not-an-id", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "MALFORMED_ID", decodeError(t, raw).Code)

	status, _ = s.do(http.MethodPatch, "/api/v1/tasks/"+uuid.NewString(), `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(http.MethodDelete, "/api/v1/tasks/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestListFiltersAndSort(t *testing.T) {
	s := newServer(t, nil)
	s.create(`{"title":"a","priority":"Low","category":"Work"}`)
	s.create(`{"title":"b","priority":"High","category":"Home"}`)
	c := s.create(`{"title":"c","priority":"High","category":"Work"}`)
	status, _ := s.do(http.MethodPatch, "/api/v1/tasks/"+c.ID, `{"completed":true}`)
	require.Equal(t, http.StatusOK, status)

	titles := func(path string) []string {
		status, raw := s.do(http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, status, string(raw))
		var tasks []domain.Task
		require.NoError(t, json.Unmarshal(raw, &tasks))
		out := make([]string, 0, len(tasks))
		for _, task := range tasks {
			out = append(out, task.Title)
		}
		return out
	}

	assert.Equal(t, []string{"c", "b", "a"}, titles("/api/v1/tasks"))
	assert.Equal(t, []string{"b", "a"}, titles("/api/v1/tasks?completed=false"))
	assert.Equal(t, []string{"c", "a"}, titles("/api/v1/tasks?category=Work"))
	assert.Equal(t, []string{"c", "b"}, titles("/api/v1/tasks?priority=High"))
	assert.Equal(t, []string{"c", "b", "a"}, titles("/api/v1/tasks?sortBy=priority"))

	status, _ = s.do(http.MethodGet, "/api/v1/tasks?completed=perhaps", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestBulkOperations(t *testing.T) {
	s := newServer(t, nil)
	a := s.create(`{"title":"a"}`)
	b := s.create(`{"title":"b"}`)
	s.create(`{"title":"c"}`)

	status, raw := s.do(http.MethodPost, "/api/v1/tasks/bulk/complete", `{"ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, decodeError(t, raw).Details, "ids")

	status, raw = s.do(http.MethodPost, "/api/v1/tasks/bulk/complete", `{"taskIds":["`+a.ID+`","`+b.ID+`","bogus"]}`)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.JSONEq(t, `{"success":true,"message":"2 tasks marked as completed","modifiedCount":2}`, string(raw))

	status, raw = s.do(http.MethodDelete, "/api/v1/tasks/bulk/completed", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"success":true,"message":"2 completed tasks deleted","deletedCount":2}`, string(raw))

	status, raw = s.do(http.MethodDelete, "/api/v1/tasks/bulk/completed", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"success":true,"message":"0 completed tasks deleted","deletedCount":0}`, string(raw))
}

func TestViewAndStats(t *testing.T) {
	s := newServer(t, nil)
	s.create(`{"title":"Workout","priority":"Low"}`)
	s.create(`{"title":"Work report","priority":"High"}`)
	s.create(`{"title":"Groceries","dueDate":"2000-01-01"}`)

	status, raw := s.do(http.MethodGet, "/api/v1/tasks/view?search=wor", "")
	require.Equal(t, http.StatusOK, status)
	var result struct {
		Tasks []struct {
			Title   string `json:"title"`
			Overdue bool   `json:"overdue"`
		} `json:"tasks"`
		Stats map[string]int `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(raw, &result))
	require.Len(t, result.Tasks, 2)
	assert.Equal(t, "Work report", result.Tasks[0].Title)
	assert.Equal(t, "Workout", result.Tasks[1].Title)
	assert.Equal(t, map[string]int{"total": 3, "completed": 0, "active": 3, "overdue": 1}, result.Stats)

	status, raw = s.do(http.MethodGet, "/api/v1/tasks/stats", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"total":3,"completed":0,"active":3,"overdue":1}`, string(raw))
}

type brokenStore struct{ repository.TaskRepository }

func (brokenStore) List(context.Context, repository.TaskFilter) ([]domain.Task, error) {
	return nil, domain.Unavailable(errors.New("dial tcp: connection refused"))
}

func (brokenStore) DeleteCompleted(context.Context) (int, error) {
	return 0, errors.New("unexpected")
}

func TestStoreFailuresMapToStatus(t *testing.T) {
	s := newServer(t, brokenStore{})

	status, raw := s.do(http.MethodGet, "/api/v1/tasks", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "STORE_UNAVAILABLE", decodeError(t, raw).Code)

	status, raw = s.do(http.MethodDelete, "/api/v1/tasks/bulk/completed", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	body := decodeError(t, raw)
	assert.Equal(t, "INTERNAL", body.Code)
	assert.Equal(t, "Internal server error", body.Error)
}

func TestHealth(t *testing.T) {
	s := newServer(t, nil)
	s.monitor.Register("store", func(context.Context) error { return nil })
	s.monitor.Refresh(context.Background())

	status, raw := s.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), `"status":"ok"`)

	s.monitor.Register("cache", func(context.Context) error { return errors.New("down") })
	s.monitor.Refresh(context.Background())
	status, raw = s.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, string(raw), `"cache":false`)
}
