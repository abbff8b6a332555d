package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	refreshKeyPrefix   = "session:refresh:"
	blacklistKeyPrefix = "session:blacklist:"
)

// RedisStore is a RevocationStore backed by Redis. Only a SHA-256 digest of
// each token is stored, keyed with a TTL matching the token's remaining
// natural lifetime, so Redis evicts dead entries on its own.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) AddRefreshToken(ctx context.Context, token string, ttl time.Duration) error {
	return s.client.Set(ctx, refreshKeyPrefix+tokenDigest(token), "1", ttl).Err()
}

func (s *RedisStore) HasRefreshToken(ctx context.Context, token string) bool {
	n, err := s.client.Exists(ctx, refreshKeyPrefix+tokenDigest(token)).Result()
	if err != nil {
		log.Printf("refresh token lookup failed: %v", err)
		return false
	}
	return n > 0
}

func (s *RedisStore) RemoveRefreshToken(ctx context.Context, token string) error {
	return s.client.Del(ctx, refreshKeyPrefix+tokenDigest(token)).Err()
}

func (s *RedisStore) BlacklistAccessToken(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, blacklistKeyPrefix+tokenDigest(token), "1", ttl).Err()
}

func (s *RedisStore) IsAccessTokenBlacklisted(ctx context.Context, token string) bool {
	n, err := s.client.Exists(ctx, blacklistKeyPrefix+tokenDigest(token)).Result()
	if err != nil {
		log.Printf("blacklist lookup failed: %v", err)
		return false
	}
	return n > 0
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
