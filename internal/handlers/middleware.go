package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/port-russell/marina/internal/logging"
)

const methodOverrideField = "_method"

var overridableMethods = map[string]struct{}{
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// MethodOverride lets HTML forms reach PUT and DELETE routes by posting a
// _method field (or an X-HTTP-Method-Override header). It must run before
// routing.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			override := r.Header.Get("X-HTTP-Method-Override")
			if override == "" && !isJSONRequest(r) {
				override = r.PostFormValue(methodOverrideField)
			}
			override = strings.ToUpper(strings.TrimSpace(override))
			if _, ok := overridableMethods[override]; ok {
				r.Method = override
				if rctx := chi.RouteContext(r.Context()); rctx != nil {
					rctx.RouteMethod = override
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger attaches a request-scoped logger carrying chi's request id
// and logs one line per completed request.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base.With(
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
			)
			ctx := logging.ContextWithLogger(r.Context(), logger)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r.WithContext(ctx))

			logger.InfoContext(ctx, "request completed",
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}
