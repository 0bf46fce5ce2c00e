package middleware

import (
	"strings"

	"github.com/valyala/fasthttp"
)

// CORSConfig holds CORS configuration options.
type CORSConfig struct {
	Origins []string
	Methods []string
	Headers []string
	MaxAge  string
}

// DefaultCORSConfig allows any origin to use the task API.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		Origins: []string{"*"},
		Methods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		Headers: []string{"Accept", "Content-Type", "Authorization", "X-Request-ID"},
		MaxAge:  "86400",
	}
}

// CORS sets the access-control headers for allowed origins and answers
// preflight requests directly.
func CORS(config CORSConfig) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	methods := strings.Join(config.Methods, ", ")
	headers := strings.Join(config.Headers, ", ")

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			reqOrigin := string(ctx.Request.Header.Peek("Origin"))
			for _, origin := range config.Origins {
				if origin == "*" || (reqOrigin != "" && origin == reqOrigin) {
					ctx.Response.Header.Set("Access-Control-Allow-Origin", origin)
					if origin != "*" {
						ctx.Response.Header.Add("Vary", "Origin")
					}
					break
				}
			}
			if methods != "" {
				ctx.Response.Header.Set("Access-Control-Allow-Methods", methods)
			}
			if headers != "" {
				ctx.Response.Header.Set("Access-Control-Allow-Headers", headers)
			}
			if config.MaxAge != "" {
				ctx.Response.Header.Set("Access-Control-Max-Age", config.MaxAge)
			}

			if ctx.IsOptions() && len(ctx.Request.Header.Peek("Access-Control-Request-Method")) > 0 {
				ctx.SetStatusCode(fasthttp.StatusNoContent)
				return
			}
			next(ctx)
		}
	}
}
