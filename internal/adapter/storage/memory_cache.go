package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is the single-process stand-in for RedisAdapter, used when no
// REDIS_URL is configured. Reservations are only atomic within this process.
type MemoryCache struct {
	mu    sync.Mutex
	stock map[int64]int
	keys  map[string]time.Time
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		stock: make(map[int64]int),
		keys:  make(map[string]time.Time),
		ttl:   idempotencyKeyTTL,
		now:   time.Now,
	}
}

func (m *MemoryCache) DecrementStock(ctx context.Context, itemID int64, quantity int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.stock[itemID]
	if !ok || current < quantity {
		return false, nil
	}
	m.stock[itemID] = current - quantity
	return true, nil
}

func (m *MemoryCache) IncrementStock(ctx context.Context, itemID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[itemID] += quantity
	return nil
}

func (m *MemoryCache) SetStock(ctx context.Context, itemID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[itemID] = quantity
	return nil
}

func (m *MemoryCache) GetStock(ctx context.Context, itemID int64) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.stock[itemID]
	return n, ok, nil
}

func (m *MemoryCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if exp, ok := m.keys[key]; ok && now.Before(exp) {
		return false, nil
	}
	m.keys[key] = now.Add(m.ttl)
	m.evict(now)
	return true, nil
}

// evict drops expired keys once the map has grown; called with mu held.
func (m *MemoryCache) evict(now time.Time) {
	if len(m.keys) < 1024 {
		return
	}
	for k, exp := range m.keys {
		if !now.Before(exp) {
			delete(m.keys, k)
		}
	}
}

func (m *MemoryCache) Ping(context.Context) error {
	return nil
}
