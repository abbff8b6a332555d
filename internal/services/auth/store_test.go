package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRefreshTokens(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.AddRefreshToken(ctx, "tok", time.Hour))
	assert.True(t, store.HasRefreshToken(ctx, "tok"))
	assert.False(t, store.HasRefreshToken(ctx, "other"))

	require.NoError(t, store.RemoveRefreshToken(ctx, "tok"))
	assert.False(t, store.HasRefreshToken(ctx, "tok"))

	// Removing an absent token is a no-op.
	assert.NoError(t, store.RemoveRefreshToken(ctx, "tok"))
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.AddRefreshToken(ctx, "stale", -time.Second))
	assert.False(t, store.HasRefreshToken(ctx, "stale"))

	require.NoError(t, store.BlacklistAccessToken(ctx, "dead", time.Hour))
	assert.True(t, store.IsAccessTokenBlacklisted(ctx, "dead"))

	// A non-positive TTL means the token is already expired; there is
	// nothing left to blacklist.
	require.NoError(t, store.BlacklistAccessToken(ctx, "gone", 0))
	assert.False(t, store.IsAccessTokenBlacklisted(ctx, "gone"))
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token := fmt.Sprintf("token-%d", i)
			_ = store.AddRefreshToken(ctx, token, time.Hour)
			_ = store.BlacklistAccessToken(ctx, token, time.Hour)
			store.HasRefreshToken(ctx, token)
			store.IsAccessTokenBlacklisted(ctx, token)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		token := fmt.Sprintf("token-%d", i)
		assert.True(t, store.HasRefreshToken(ctx, token))
		assert.True(t, store.IsAccessTokenBlacklisted(ctx, token))
	}
}
