package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestWithComponentReplacesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentApp, Output: &buf})

	l.WithComponent(ComponentBackup).Info("hello")
	out := buf.String()
	assert.Contains(t, out, "component=backup")
	assert.NotContains(t, out, "component=app")
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentStorage, Output: &buf})

	l.LogError(context.Background(), "write failed", errors.New("disk full"), OpImport, NewFields().With(FieldCount, 3))
	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, `error="disk full"`)
	assert.Contains(t, out, "operation=import")
	assert.Contains(t, out, "count=3")
}

func TestMiddlewareAddsRequestScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentHTTP, Output: &buf})

	var seenID string
	h := Middleware(l, func(*http.Request) string { return "10.0.0.1" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestID(r.Context())
		FromContext(r.Context()).Info("inside")
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	req.Header.Set("X-Request-ID", "req-1")
	h.ServeHTTP(rr, req)

	assert.Equal(t, "req-1", seenID)
	assert.Equal(t, "req-1", rr.Header().Get("X-Request-ID"))
	out := buf.String()
	assert.Contains(t, out, "request_id=req-1")
	assert.Contains(t, out, "status_code=418")
	assert.Contains(t, out, "level=WARN")
}
