package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/simmerapp/simmer-server/internal/http/response"
	"github.com/simmerapp/simmer-server/internal/logger"
)

// EnvelopeVersion is the current envelope format version carried in "v".
const EnvelopeVersion = response.Version

// EnvelopeTransformer wraps every huma response body in the standard envelope.
//
//	{"v":1,"success":true,"data":...}
//	{"v":1,"success":false,"error":"...","code":"...","details":...}
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if env, ok := v.(response.Envelope); ok {
		return env, nil
	}

	code, _ := strconv.Atoi(status)

	var apiErr *APIError
	if err, ok := v.(error); ok && errors.As(err, &apiErr) {
		return response.Fail(apiErr.Code, apiErr.Message, apiErr.Details), nil
	}
	if err, ok := v.(error); ok {
		return response.Fail(string(response.CodeForStatus(code)), err.Error(), nil), nil
	}
	if code >= http.StatusBadRequest {
		return response.Fail(string(response.CodeForStatus(code)), http.StatusText(code), v), nil
	}

	return response.Ok(v), nil
}

// requestLogger logs one line per request and stores a request-scoped logger in the context.
func requestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := base.With(
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logger.NewContext(r.Context(), reqLogger)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelDebug
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			reqLogger.Log(r.Context(), level, "request completed",
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// noStore marks responses as uncacheable. Pages and API payloads are per-user.
func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", CacheNoStore)
		next.ServeHTTP(w, r)
	})
}
