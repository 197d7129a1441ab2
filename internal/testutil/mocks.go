package testutil

import (
	"context"
	"sync"
	"time"
)

// MockCache implements ports.TemplateCache in memory for testing.
type MockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	PingErr error
	Hits    int
	Misses  int
	Sets    int
}

func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string][]byte)}
}

func (m *MockCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if ok {
		m.Hits++
	} else {
		m.Misses++
	}
	return val, ok
}

func (m *MockCache) Set(_ context.Context, key string, data []byte, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	m.Sets++
}

func (m *MockCache) Ping(_ context.Context) error {
	return m.PingErr
}
