package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
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

func newTestMemory(maxEntries int) (*Memory, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := NewMemory(maxEntries)
	m.now = clock.Now
	return m, clock
}

func TestMemory_RoundTrip(t *testing.T) {
	m, _ := newTestMemory(0)
	ctx := context.Background()

	payload := []byte(`{"temperature":21.5}`)
	m.Set(ctx, "weather:place:berlin", payload, time.Hour)

	got, ok := m.Get(ctx, "weather:place:berlin")
	require.True(t, ok)
	assert.Equal(t, payload, got)

	_, ok = m.Get(ctx, "weather:place:paris")
	assert.False(t, ok)
}

func TestMemory_ExpiresOnRead(t *testing.T) {
	m, clock := newTestMemory(0)
	ctx := context.Background()

	m.Set(ctx, "k", []byte("v"), time.Hour)

	clock.Advance(59 * time.Minute)
	_, ok := m.Get(ctx, "k")
	assert.True(t, ok, "entry should still be fresh")

	clock.Advance(time.Minute)
	_, ok = m.Get(ctx, "k")
	assert.False(t, ok, "entry should expire at the ttl boundary")
	assert.Equal(t, 0, m.Len())
}

func TestMemory_SetRefreshesWindow(t *testing.T) {
	m, clock := newTestMemory(0)
	ctx := context.Background()

	m.Set(ctx, "k", []byte("old"), time.Hour)
	clock.Advance(50 * time.Minute)
	m.Set(ctx, "k", []byte("new"), time.Hour)
	clock.Advance(50 * time.Minute)

	got, ok := m.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "new", string(got))
}

func TestMemory_NonPositiveTTLIsIgnored(t *testing.T) {
	m, _ := newTestMemory(0)
	m.Set(context.Background(), "k", []byte("v"), 0)
	assert.Equal(t, 0, m.Len())
}

func TestMemory_EvictsOldestWhenFull(t *testing.T) {
	m, clock := newTestMemory(2)
	ctx := context.Background()

	m.Set(ctx, "a", []byte("1"), time.Hour)
	clock.Advance(time.Second)
	m.Set(ctx, "b", []byte("2"), time.Hour)
	clock.Advance(time.Second)
	m.Set(ctx, "c", []byte("3"), time.Hour)

	assert.Equal(t, 2, m.Len())
	_, ok := m.Get(ctx, "a")
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok = m.Get(ctx, "c")
	assert.True(t, ok)
}

func TestMemory_EvictsExpiredBeforeLive(t *testing.T) {
	m, clock := newTestMemory(2)
	ctx := context.Background()

	m.Set(ctx, "short", []byte("1"), time.Minute)
	m.Set(ctx, "long", []byte("2"), time.Hour)
	clock.Advance(2 * time.Minute)
	m.Set(ctx, "new", []byte("3"), time.Hour)

	_, ok := m.Get(ctx, "long")
	assert.True(t, ok, "live entry should survive while an expired one can go")
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	m := NewMemory(50)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (i+j)%80)
				m.Set(ctx, key, []byte("v"), time.Hour)
				m.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, m.Len(), 50)
}

func setupRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r := NewRedis(RedisOptions{Addr: mr.Addr(), Prefix: "travel:"})
	t.Cleanup(func() { r.Close() })
	return r, mr
}

func TestRedis_RoundTrip(t *testing.T) {
	r, mr := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Ping(ctx))

	payload := []byte(`{"articles":[]}`)
	r.Set(ctx, "news:feed", payload, 6*time.Hour)

	got, ok := r.Get(ctx, "news:feed")
	require.True(t, ok)
	assert.Equal(t, payload, got)
	assert.True(t, mr.Exists("travel:news:feed"), "key should carry the prefix")
}

func TestRedis_Expiry(t *testing.T) {
	r, mr := setupRedis(t)
	ctx := context.Background()

	r.Set(ctx, "k", []byte("v"), time.Hour)
	mr.FastForward(time.Hour + time.Second)

	_, ok := r.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedis_ErrorIsMiss(t *testing.T) {
	r, mr := setupRedis(t)
	ctx := context.Background()

	r.Set(ctx, "k", []byte("v"), time.Hour)
	mr.SetError("server down")

	_, ok := r.Get(ctx, "k")
	assert.False(t, ok)

	mr.SetError("")
	_, ok = r.Get(ctx, "k")
	assert.True(t, ok)
}
