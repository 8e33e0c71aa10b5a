package tags

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/runnerr0/tagshelf/internal/logger"
	"github.com/runnerr0/tagshelf/internal/media"
	"github.com/runnerr0/tagshelf/internal/storage"
)

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newTestService builds a Service over kv with a fake clock.
func newTestService(t *testing.T, kv storage.KV, opts ...ServiceOption) (*Service, *storage.ItemStore, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	store := storage.NewItemStore(kv, storage.WithLogger(logger.Discard()), storage.WithClock(clock.Now))
	all := append([]ServiceOption{WithLogger(logger.Discard()), WithClock(clock.Now)}, opts...)
	return NewService(store, all...), store, clock
}

// seededService returns a Service over in-memory storage holding items.
func seededService(t *testing.T, items []media.Item, opts ...ServiceOption) (*Service, *storage.ItemStore, *fakeClock) {
	t.Helper()
	svc, store, clock := newTestService(t, storage.NewMemoryKV(), opts...)
	require.NoError(t, store.SaveItems(context.Background(), items))
	return svc, store, clock
}

func scenarioOne() []media.Item {
	return []media.Item{item("1", "jazz", "Chill"), item("2", "jazz")}
}
