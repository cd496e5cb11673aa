package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// RevocationRetention bounds how long a revoked token is remembered. The
// token's own expiry handles anything older, so the store only ever holds
// tokens logged out within the last 24 hours.
const RevocationRetention = 24 * time.Hour

// RevocationStore records tokens that must be rejected even though still
// cryptographically valid. Revoke is idempotent; IsRevoked returns false
// once the retention window has elapsed.
type RevocationStore interface {
	Revoke(ctx context.Context, token string) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// RedisRevocationStore keeps revoked tokens as TTL'd Redis keys, so the
// retention window is enforced by Redis itself.
type RedisRevocationStore struct {
	client    *redis.Client
	retention time.Duration
}

func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client, retention: RevocationRetention}
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, token string) error {
	// SETNX keeps the original insertion time on double revocation.
	return s.client.SetNX(ctx, revocationKey(token), 1, s.retention).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, revocationKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func revocationKey(token string) string {
	return "revoked:" + token
}

// MemoryRevocationStore is the in-process fallback used when Redis is
// unavailable. Expiry is checked lazily on lookup and swept by a janitor
// loop so the map stays bounded.
type MemoryRevocationStore struct {
	mu        sync.RWMutex
	revokedAt map[string]time.Time
	retention time.Duration
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return newMemoryRevocationStore(RevocationRetention)
}

func newMemoryRevocationStore(retention time.Duration) *MemoryRevocationStore {
	return &MemoryRevocationStore{
		revokedAt: make(map[string]time.Time),
		retention: retention,
	}
}

func (s *MemoryRevocationStore) Revoke(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Idempotent: keep the first revocation time.
	if _, exists := s.revokedAt[token]; !exists {
		s.revokedAt[token] = time.Now()
	}
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	s.mu.RLock()
	revokedAt, exists := s.revokedAt[token]
	s.mu.RUnlock()

	if !exists {
		return false, nil
	}
	if time.Since(revokedAt) > s.retention {
		s.mu.Lock()
		delete(s.revokedAt, token)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// StartCleanup sweeps expired revocation records every hour until the
// context is cancelled.
func (s *MemoryRevocationStore) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *MemoryRevocationStore) sweep() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, revokedAt := range s.revokedAt {
		if now.Sub(revokedAt) > s.retention {
			delete(s.revokedAt, token)
		}
	}
}
