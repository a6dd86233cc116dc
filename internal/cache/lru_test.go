package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/log"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[string, int](2, 0)
	c.Set("a", 1)
	c.Set("b", 2)

	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", 3)
	_, ok = c.Get("b")
	assert.False(t, ok, "b was least recently used")
	assert.Equal(t, 2, c.Size())

	c.Set("a", 10)
	v, _ := c.Get("a")
	assert.Equal(t, 10, v)
}

func TestLRUExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRU[int, string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set(1, "one")
	c.Set(2, "two")
	now = now.Add(30 * time.Second)
	c.Set(3, "three")

	now = now.Add(45 * time.Second)
	_, ok := c.Get(1)
	assert.False(t, ok)

	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 1, c.Size())
	v, ok := c.Get(3)
	assert.True(t, ok)
	assert.Equal(t, "three", v)
}

func TestLRUPurgeAndDelete(t *testing.T) {
	c := NewLRU[string, int](4, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	assert.Equal(t, 1, c.Size())
	c.Purge()
	assert.Equal(t, 0, c.Size())
}

func TestManagerSweep(t *testing.T) {
	now := time.Now()
	c := NewLRU[string, int](4, time.Second)
	c.now = func() time.Time { return now }
	c.Set("a", 1)
	now = now.Add(2 * time.Second)

	m := NewManager(log.Discard())
	m.Register(c)
	assert.Equal(t, 1, m.Sweep())

	m.StartCleanup(10 * time.Millisecond)
	m.Stop()
	m.Stop()
}
