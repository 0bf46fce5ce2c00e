package transport

import "github.com/fastygo/daymate/domain"

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// DeleteResponse confirms a single deletion.
type DeleteResponse struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message"`
	DeletedTask *domain.Task `json:"deletedTask"`
}

// BulkCompleteResponse reports how many tasks changed state.
type BulkCompleteResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	ModifiedCount int    `json:"modifiedCount"`
}

// BulkDeleteResponse reports how many completed tasks were removed.
type BulkDeleteResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	DeletedCount int    `json:"deletedCount"`
}

// HealthResponse lists the state of each dependency.
type HealthResponse struct {
	Status     string          `json:"status"`
	Timestamp  string          `json:"timestamp"`
	Components map[string]bool `json:"components"`
}

