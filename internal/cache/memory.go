package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type item struct {
	data      []byte
	expiresAt time.Time
}

// Memory is an in-process LRU with per-entry expiry. Entries vanish from this
// process only; use the redis backend when several servers share a cache.
type Memory struct {
	lru *lru.Cache[string, item]
	now func() time.Time
}

func NewMemory(size int) (*Memory, error) {
	if size <= 0 {
		size = 500
	}
	l, err := lru.New[string, item](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &Memory{lru: l, now: time.Now}, nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, ok := m.lru.Get(key)
	if !ok {
		return nil, false, nil
	}

	if !m.now().Before(val.expiresAt) {
		m.lru.Remove(key)
		return nil, false, nil
	}

	return val.data, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	data := make([]byte, len(value))
	copy(data, value)
	m.lru.Add(key, item{
		data:      data,
		expiresAt: m.now().Add(ttl),
	})
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		m.lru.Remove(key)
	}
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.lru.Purge()
	return nil
}
