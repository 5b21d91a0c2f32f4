package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TabStore is the volatile per-tab record store (the tab's session storage).
// Get returns nil, nil when the key is absent.
type TabStore interface {
	Set(ctx context.Context, tabID, key string, value []byte) error
	Get(ctx context.Context, tabID, key string) ([]byte, error)
	Delete(ctx context.Context, tabID, key string) error
}

type redisTabStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTabStore creates a Redis-backed tab store. Records expire after ttl
// of inactivity, mirroring a closed tab.
func NewRedisTabStore(client *redis.Client, ttl time.Duration) TabStore {
	return &redisTabStore{
		client: client,
		ttl:    ttl,
	}
}

func (c *redisTabStore) key(tabID, key string) string {
	return fmt.Sprintf("tab:%s:%s", tabID, key)
}

func (c *redisTabStore) Set(ctx context.Context, tabID, key string, value []byte) error {
	return c.client.Set(ctx, c.key(tabID, key), value, c.ttl).Err()
}

func (c *redisTabStore) Get(ctx context.Context, tabID, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.key(tabID, key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *redisTabStore) Delete(ctx context.Context, tabID, key string) error {
	return c.client.Del(ctx, c.key(tabID, key)).Err()
}

type memoryTabStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryTabStore creates an in-process tab store
func NewMemoryTabStore() TabStore {
	return &memoryTabStore{data: make(map[string][]byte)}
}

func (m *memoryTabStore) key(tabID, key string) string {
	return tabID + "/" + key
}

func (m *memoryTabStore) Set(_ context.Context, tabID, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[m.key(tabID, key)] = append([]byte(nil), value...)
	return nil
}

func (m *memoryTabStore) Get(_ context.Context, tabID, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[m.key(tabID, key)]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *memoryTabStore) Delete(_ context.Context, tabID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, m.key(tabID, key))
	return nil
}
