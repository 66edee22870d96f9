package notifications

import (
	"context"
	"sync"
	"time"

	"gearswap/internal/cache"

	"github.com/redis/go-redis/v9"
)

const presenceTTL = 90 * time.Second

// ConnectionManager tracks which users are online. With Redis the state is
// shared across instances; without it, presence is instance-local.
type ConnectionManager struct {
	rdb *redis.Client

	mu    sync.RWMutex
	local map[uint]int
}

// NewConnectionManager creates a presence tracker backed by the given Redis client.
func NewConnectionManager(rdb *redis.Client) *ConnectionManager {
	return &ConnectionManager{
		rdb:   rdb,
		local: make(map[uint]int),
	}
}

// Register marks a user online.
func (m *ConnectionManager) Register(ctx context.Context, userID uint) {
	m.mu.Lock()
	m.local[userID]++
	m.mu.Unlock()

	if m.rdb != nil {
		m.rdb.Set(ctx, cache.PresenceKey(userID), "1", presenceTTL)
	}
}

// Unregister drops one connection; the user goes offline when none remain.
func (m *ConnectionManager) Unregister(ctx context.Context, userID uint) {
	m.mu.Lock()
	if m.local[userID] > 0 {
		m.local[userID]--
	}
	gone := m.local[userID] == 0
	if gone {
		delete(m.local, userID)
	}
	m.mu.Unlock()

	if gone && m.rdb != nil {
		m.rdb.Del(ctx, cache.PresenceKey(userID))
	}
}

// Touch refreshes the presence TTL on client activity.
func (m *ConnectionManager) Touch(ctx context.Context, userID uint) {
	if m.rdb != nil {
		m.rdb.Expire(ctx, cache.PresenceKey(userID), presenceTTL)
	}
}

// IsOnline reports whether the user has a live connection anywhere.
func (m *ConnectionManager) IsOnline(ctx context.Context, userID uint) bool {
	if m.rdb != nil {
		n, err := m.rdb.Exists(ctx, cache.PresenceKey(userID)).Result()
		if err == nil {
			return n > 0
		}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.local[userID] > 0
}
