package auth

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreRefreshTokens(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client)
	ctx := context.Background()

	key := refreshKeyPrefix + tokenDigest("tok")
	mock.ExpectSet(key, "1", time.Hour).SetVal("OK")
	mock.ExpectExists(key).SetVal(1)
	mock.ExpectDel(key).SetVal(1)
	mock.ExpectExists(key).SetVal(0)

	require.NoError(t, store.AddRefreshToken(ctx, "tok", time.Hour))
	assert.True(t, store.HasRefreshToken(ctx, "tok"))
	require.NoError(t, store.RemoveRefreshToken(ctx, "tok"))
	assert.False(t, store.HasRefreshToken(ctx, "tok"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreBlacklist(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client)
	ctx := context.Background()

	key := blacklistKeyPrefix + tokenDigest("access")
	mock.ExpectSet(key, "1", 30*time.Minute).SetVal("OK")
	mock.ExpectExists(key).SetVal(1)

	require.NoError(t, store.BlacklistAccessToken(ctx, "access", 30*time.Minute))
	assert.True(t, store.IsAccessTokenBlacklisted(ctx, "access"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreBlacklistExpiredToken(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client)

	// Nothing is written for a token that has already expired naturally.
	assert.NoError(t, store.BlacklistAccessToken(context.Background(), "stale", -time.Minute))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreLookupFailureIsClosed(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client)
	ctx := context.Background()

	mock.ExpectExists(refreshKeyPrefix + tokenDigest("tok")).SetErr(assert.AnError)
	assert.False(t, store.HasRefreshToken(ctx, "tok"))
}
