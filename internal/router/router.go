package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/daymate/api/handler"
)

type Handlers struct {
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

// New registers every route. Static bulk and view paths take precedence over
// the {id} parameter.
func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	if authMiddleware == nil {
		authMiddleware = func(h fasthttp.RequestHandler) fasthttp.RequestHandler { return h }
	}
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.GET("/api/v1/tasks/view", authMiddleware(handlers.Task.View))
	r.GET("/api/v1/tasks/stats", authMiddleware(handlers.Task.Stats))
	r.POST("/api/v1/tasks/bulk/complete", authMiddleware(handlers.Task.CompleteTasks))
	r.DELETE("/api/v1/tasks/bulk/completed", authMiddleware(handlers.Task.DeleteCompletedTasks))
	r.GET("/api/v1/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	r.PATCH("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	return r
}
