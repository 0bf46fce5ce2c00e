package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/daymate/api/transport"
	"github.com/fastygo/daymate/internal/infrastructure/monitor"
	"github.com/fastygo/daymate/pkg/httpcontext"
)

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
}

func NewHealthHandler(mon *monitor.Monitor, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := transport.HealthResponse{
		Status:     "ok",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: status.Components,
	}

	if status.Healthy() {
		h.respondJSON(ctx, http.StatusOK, payload)
		return
	}
	payload.Status = "degraded"
	h.respondJSON(ctx, http.StatusServiceUnavailable, payload)
}
