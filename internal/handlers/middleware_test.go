package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"

	"github.com/port-russell/marina/internal/logging"
)

func methodRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(MethodOverride)
	r.Post("/catways/{number}", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("post")) })
	r.Put("/catways/{number}", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("put")) })
	r.Delete("/catways/{number}", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("delete")) })
	return r
}

func TestMethodOverride(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		header string
		want   string
	}{
		{name: "delete field", values: url.Values{"_method": {"DELETE"}}, want: "delete"},
		{name: "lowercase put", values: url.Values{"_method": {"put"}}, want: "put"},
		{name: "header", header: "DELETE", want: "delete"},
		{name: "unsupported method stays post", values: url.Values{"_method": {"TRACE"}}, want: "post"},
		{name: "no override", values: url.Values{"catwayState": {"ok"}}, want: "post"},
	}

	router := methodRouter()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := postForm("/catways/7", tc.values)
			if tc.header != "" {
				req.Header.Set("X-HTTP-Method-Override", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.want, rec.Body.String())
		})
	}
}

func TestMethodOverride_KeepsFormValues(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MethodOverride)
	r.Put("/catways/{number}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.PostFormValue("catwayState")))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, postForm("/catways/7", url.Values{"_method": {"PUT"}, "catwayState": {"repeint"}}))
	assert.Equal(t, "repeint", rec.Body.String())
}

func TestRequestLogger_AttachesRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(middleware.RequestID, RequestLogger(base))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	out := buf.String()
	assert.Contains(t, out, `"msg":"inside handler"`)
	assert.Contains(t, out, `"request_id"`)
	assert.Contains(t, out, `"status":418`)
}
