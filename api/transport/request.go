package transport

import (
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/daymate/domain"
	"github.com/fastygo/daymate/repository"
	taskUC "github.com/fastygo/daymate/usecase/task"
	"github.com/fastygo/daymate/usecase/view"
)

// BulkCompleteRequest accepts the current "ids" key and the older "taskIds".
type BulkCompleteRequest struct {
	IDs     []string `json:"ids"`
	TaskIDs []string `json:"taskIds"`
}

// Targets returns the ids to complete, preferring "ids" when both are sent.
func (r BulkCompleteRequest) Targets() []string {
	if len(r.IDs) > 0 {
		return r.IDs
	}
	return r.TaskIDs
}

func DecodeCreateTask(body []byte) (taskUC.CreateInput, error) {
	var input taskUC.CreateInput
	err := decode(body, createSchema, &input)
	return input, err
}

func DecodeUpdateTask(body []byte) (taskUC.UpdateInput, error) {
	var input taskUC.UpdateInput
	err := decode(body, updateSchema, &input)
	return input, err
}

func DecodeBulkComplete(body []byte) (BulkCompleteRequest, error) {
	var req BulkCompleteRequest
	err := decode(body, bulkSchema, &req)
	return req, err
}

// ParseTaskFilter reads the list query string. Empty parameters are ignored
// and an unknown sortBy falls back to the default order.
func ParseTaskFilter(args *fasthttp.Args) (repository.TaskFilter, error) {
	filter := repository.TaskFilter{
		Category: strings.TrimSpace(string(args.Peek("category"))),
		SortBy:   repository.ParseSortKey(string(args.Peek("sortBy"))),
	}
	fields := map[string]string{}

	if raw := strings.TrimSpace(string(args.Peek("completed"))); raw != "" {
		switch raw {
		case "true", "false":
			completed := raw == "true"
			filter.Completed = &completed
		default:
			fields["completed"] = "completed must be true or false"
		}
	}
	if raw := strings.TrimSpace(string(args.Peek("priority"))); raw != "" {
		priority, ok := domain.ParsePriority(raw)
		if !ok {
			fields["priority"] = "Priority must be one of Low, Medium, High"
		} else {
			filter.Priority = priority
		}
	}

	if len(fields) > 0 {
		return repository.TaskFilter{}, domain.NewValidationError(fields)
	}
	return filter, nil
}

// ParseViewParams reads search and status; they never fail. Search text is
// matched as typed, surrounding spaces included.
func ParseViewParams(args *fasthttp.Args) view.Params {
	return view.Params{
		Search: string(args.Peek("search")),
		Status: view.ParseStatus(string(args.Peek("status"))),
	}
}
