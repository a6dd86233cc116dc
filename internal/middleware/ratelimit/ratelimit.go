// Package ratelimit implements a fixed-window, per-client request limiter.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const window = time.Minute

// Limiter allows RequestsPerMinute requests per client key in each
// one-minute window.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	now     func() time.Time

	requestsPerMinute int
	staleAfter        time.Duration
	rejected          atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
}

type clientWindow struct {
	start    time.Time
	requests int
}

type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 120,
		CleanupInterval:   5 * time.Minute,
	}
}

// NewLimiter starts a background sweep of idle clients; call Stop to end it.
func NewLimiter(config Config) *Limiter {
	def := DefaultConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = def.RequestsPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}

	l := &Limiter{
		clients:           make(map[string]*clientWindow),
		now:               time.Now,
		requestsPerMinute: config.RequestsPerMinute,
		staleAfter:        2 * config.CleanupInterval,
		stop:              make(chan struct{}),
	}
	go l.cleanupLoop(config.CleanupInterval)
	return l
}

// Allow records a request from key and reports whether it is within limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, ok := l.clients[key]
	if !ok || now.Sub(c.start) >= window {
		l.clients[key] = &clientWindow{start: now, requests: 1}
		return true
	}
	if c.requests >= l.requestsPerMinute {
		l.rejected.Add(1)
		return false
	}
	c.requests++
	return true
}

// retryAfter is the number of seconds until key's window resets.
func (l *Limiter) retryAfter(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.clients[key]
	if !ok {
		return 0
	}
	secs := int((window - l.now().Sub(c.start)).Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}

func (l *Limiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.removeStale()
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) removeStale() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.staleAfter)
	removed := 0
	for key, c := range l.clients {
		if c.start.Before(cutoff) {
			delete(l.clients, key)
			removed++
		}
	}
	return removed
}

func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

type Metrics struct {
	Rejected    int64
	ClientCount int
}

func (l *Limiter) GetMetrics() Metrics {
	l.mu.Lock()
	n := len(l.clients)
	l.mu.Unlock()
	return Metrics{Rejected: l.rejected.Load(), ClientCount: n}
}

// Middleware rejects over-limit requests with 429. onLimit, when set,
// writes the rejection body instead of the plain-text default.
func (l *Limiter) Middleware(key func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if !l.Allow(k) {
				w.Header().Set("Retry-After", strconv.Itoa(l.retryAfter(k)))
				if onLimit != nil {
					onLimit(w, r)
				} else {
					http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
