package cache

import (
	"context"
	"sync"
	"time"
)

// Cache stores opaque payloads for a fixed time window. Expiry is checked on
// read; an expired entry is a miss and the caller refetches.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

type entry struct {
	value     []byte
	fetchedAt time.Time
	ttl       time.Duration
}

// Memory is a process-local Cache. MaxEntries <= 0 means unbounded.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]entry
	maxEntries int
	now        func() time.Time
}

func NewMemory(maxEntries int) *Memory {
	return &Memory{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().Sub(e.fetchedAt) >= e.ttl {
		delete(m.entries, key)
		return nil, false
	}
	return e.value, true
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
		m.evictOldest()
	}
	m.entries[key] = entry{value: value, fetchedAt: m.now(), ttl: ttl}
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// evictOldest drops expired entries, or failing that the oldest one. Caller holds mu.
func (m *Memory) evictOldest() {
	now := m.now()
	var oldestKey string
	var oldest time.Time
	removed := false
	for k, e := range m.entries {
		if now.Sub(e.fetchedAt) >= e.ttl {
			delete(m.entries, k)
			removed = true
			continue
		}
		if oldestKey == "" || e.fetchedAt.Before(oldest) {
			oldestKey = k
			oldest = e.fetchedAt
		}
	}
	if !removed && oldestKey != "" {
		delete(m.entries, oldestKey)
	}
}
