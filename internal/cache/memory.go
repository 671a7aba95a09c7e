package cache

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	val     []byte
	expires time.Time
	tags    []string
}

// MemoryStore is an in-process Store: a map of entries plus a tag → keys
// index.  Expired entries are dropped lazily on read.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
	byTag   map[string]map[string]struct{}
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memEntry),
		byTag:   make(map[string]map[string]struct{}),
		now:     time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expires) {
		m.deleteLocked(key)
		return nil, false, nil
	}
	return e.val, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, val []byte, ttl time.Duration, tags []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteLocked(key)
	m.entries[key] = memEntry{val: val, expires: m.now().Add(ttl), tags: tags}
	for _, t := range tags {
		keys, ok := m.byTag[t]
		if !ok {
			keys = make(map[string]struct{})
			m.byTag[t] = keys
		}
		keys[key] = struct{}{}
	}
	return nil
}

func (m *MemoryStore) Flush(_ context.Context, tags ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range tags {
		for key := range m.byTag[t] {
			m.deleteLocked(key)
		}
		delete(m.byTag, t)
	}
	return nil
}

// Len returns the number of live and not-yet-collected entries.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryStore) deleteLocked(key string) {
	e, ok := m.entries[key]
	if !ok {
		return
	}
	delete(m.entries, key)
	for _, t := range e.tags {
		if keys, ok := m.byTag[t]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(m.byTag, t)
			}
		}
	}
}
