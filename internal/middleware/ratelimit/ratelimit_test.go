package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, perMinute int) (*Limiter, *time.Time) {
	t.Helper()
	l := NewLimiter(Config{RequestsPerMinute: perMinute, CleanupInterval: time.Hour})
	t.Cleanup(l.Stop)
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestAllowWindow(t *testing.T) {
	l, clock := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("a"), "request %d", i)
	}
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "clients are independent")

	*clock = clock.Add(time.Minute)
	assert.True(t, l.Allow("a"), "new window")

	m := l.GetMetrics()
	assert.Equal(t, int64(1), m.Rejected)
	assert.Equal(t, 2, m.ClientCount)
}

func TestRemoveStale(t *testing.T) {
	l, clock := newTestLimiter(t, 3)
	l.Allow("a")
	*clock = clock.Add(3 * time.Hour)
	l.Allow("b")

	assert.Equal(t, 1, l.removeStale())
	assert.Equal(t, 1, l.GetMetrics().ClientCount)
}

func TestMiddleware(t *testing.T) {
	l, _ := newTestLimiter(t, 1)
	h := l.Middleware(func(r *http.Request) string { return "k" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}
