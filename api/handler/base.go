package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/daymate/api/transport"
	"github.com/fastygo/daymate/domain"
	"github.com/fastygo/daymate/pkg/httpcontext"
	"github.com/fastygo/daymate/pkg/logger"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
		ctx.Error(`{"error":"Internal server error","code":"INTERNAL"}`, http.StatusInternalServerError)
		ctx.Response.Header.SetContentType("application/json")
		return
	}
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, reqCtx context.Context, err error) {
	status, code := mapError(err)
	resp := transport.ErrorResponse{Code: string(code)}

	var dErr *domain.Error
	switch {
	case status == http.StatusInternalServerError:
		resp.Error = "Internal server error"
	case errors.As(err, &dErr):
		resp.Error = dErr.Message
		resp.Details = dErr.Fields
	default:
		resp.Error = err.Error()
	}

	log := logger.WithRequestID(reqCtx, h.logger)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("path", string(ctx.Path())), zap.Error(err))
	} else {
		log.Debug("request rejected", zap.String("path", string(ctx.Path())), zap.String("code", string(code)))
	}
	h.respondJSON(ctx, status, resp)
}

func mapError(err error) (int, domain.ErrorCode) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, domain.ErrCodeInvalid
	case domain.IsDomainError(err, domain.ErrCodeMalformedID):
		return http.StatusBadRequest, domain.ErrCodeMalformedID
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, domain.ErrCodeNotFound
	case domain.IsDomainError(err, domain.ErrCodeUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, domain.ErrCodeUnavailable
	default:
		return http.StatusInternalServerError, domain.ErrCodeInternal
	}
}
