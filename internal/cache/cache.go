// Package cache provides in-memory TTL caches and a manager that sweeps
// expired entries in the background.
package cache

import (
	"context"
	"sync"
	"time"

	"ledger/internal/log"
)

type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Delete(key K)
	Purge()
	Size() int
}

// Cleaner is a cache that can drop its expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager runs periodic cleanup over registered caches.
type Manager struct {
	mu     sync.Mutex
	caches []Cleaner
	logger *log.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewManager(logger *log.Logger) *Manager {
	return &Manager{
		logger: log.OrDefault(logger).WithComponent(log.ComponentCache),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (m *Manager) Register(c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches = append(m.caches, c)
}

// Sweep cleans every registered cache once and returns the number of
// entries removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	caches := append([]Cleaner(nil), m.caches...)
	m.mu.Unlock()

	total := 0
	for _, c := range caches {
		total += c.CleanExpired()
	}
	return total
}

// StartCleanup sweeps every interval until Stop is called.
func (m *Manager) StartCleanup(interval time.Duration) {
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := m.Sweep(); n > 0 {
					m.logger.DebugContext(context.Background(), "Expired cache entries removed", log.FieldCount, n)
				}
			case <-m.stop:
				return
			}
		}
	}()
}

// Stop ends the cleanup loop started by StartCleanup and waits for it.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	select {
	case <-m.done:
	case <-time.After(time.Second):
	}
}
