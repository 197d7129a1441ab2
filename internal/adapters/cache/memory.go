package cache

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

// shardCount determines the number of internal shards to reduce lock contention.
const shardCount = 32

type entry struct {
	data      []byte
	expiresAt time.Time
}

type shard struct {
	mu    sync.RWMutex
	items map[string]entry
}

// MemoryCache is a sharded in-process template cache, used when no Redis
// address is configured. Entries expire by TTL; a background loop reclaims
// them.
type MemoryCache struct {
	shards [shardCount]*shard
}

func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{}
	for i := 0; i < shardCount; i++ {
		c.shards[i] = &shard{items: make(map[string]entry)}
	}
	go c.cleanupLoop()
	return c
}

func (c *MemoryCache) getShard(key string) *shard {
	h := fnv.New32a()
	h.Write([]byte(key)) // #nosec G104
	return c.shards[h.Sum32()%shardCount]
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	s := c.getShard(key)
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, found := s.items[key]
	if !found || time.Now().After(item.expiresAt) {
		return nil, false
	}
	return item.data, true
}

func (c *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) {
	s := c.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = entry{data: data, expiresAt: time.Now().Add(ttl)}
}

func (c *MemoryCache) Ping(context.Context) error { return nil }

// Flush removes all items from all shards.
func (c *MemoryCache) Flush() {
	for i := 0; i < shardCount; i++ {
		s := c.shards[i]
		s.mu.Lock()
		s.items = make(map[string]entry)
		s.mu.Unlock()
	}
}

func (c *MemoryCache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		c.cleanup()
	}
}

// cleanup deletes items that have passed their expiration time.
func (c *MemoryCache) cleanup() {
	now := time.Now()
	for i := 0; i < shardCount; i++ {
		s := c.shards[i]
		s.mu.Lock()
		for k, v := range s.items {
			if now.After(v.expiresAt) {
				delete(s.items, k)
			}
		}
		s.mu.Unlock()
	}
}
