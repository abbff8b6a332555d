package auth

import (
	"context"
	"sync"
	"time"
)

// RevocationStore tracks the active refresh tokens and the blacklist of
// access tokens revoked before their natural expiry. Implementations must
// be safe for concurrent use and must evict entries once their TTL passes
// so neither set grows without bound.
type RevocationStore interface {
	AddRefreshToken(ctx context.Context, token string, ttl time.Duration) error
	HasRefreshToken(ctx context.Context, token string) bool
	RemoveRefreshToken(ctx context.Context, token string) error
	BlacklistAccessToken(ctx context.Context, token string, ttl time.Duration) error
	IsAccessTokenBlacklisted(ctx context.Context, token string) bool
}

const sweepInterval = time.Minute

// MemoryStore is a process-local RevocationStore. A background sweeper
// drops expired entries so the sets stay bounded by the number of live
// tokens.
type MemoryStore struct {
	mu        sync.RWMutex
	refresh   map[string]time.Time
	blacklist map[string]time.Time
	done      chan struct{}
	closeOnce sync.Once
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		refresh:   make(map[string]time.Time),
		blacklist: make(map[string]time.Time),
		done:      make(chan struct{}),
	}
	go s.sweep()
	return s
}

func (s *MemoryStore) AddRefreshToken(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[token] = time.Now().Add(ttl)
	return nil
}

func (s *MemoryStore) HasRefreshToken(_ context.Context, token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expiry, ok := s.refresh[token]
	return ok && time.Now().Before(expiry)
}

func (s *MemoryStore) RemoveRefreshToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refresh, token)
	return nil
}

func (s *MemoryStore) BlacklistAccessToken(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklist[token] = time.Now().Add(ttl)
	return nil
}

func (s *MemoryStore) IsAccessTokenBlacklisted(_ context.Context, token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expiry, ok := s.blacklist[token]
	return ok && time.Now().Before(expiry)
}

// Close stops the background sweeper.
func (s *MemoryStore) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for token, expiry := range s.refresh {
				if now.After(expiry) {
					delete(s.refresh, token)
				}
			}
			for token, expiry := range s.blacklist {
				if now.After(expiry) {
					delete(s.blacklist, token)
				}
			}
			s.mu.Unlock()
		}
	}
}
