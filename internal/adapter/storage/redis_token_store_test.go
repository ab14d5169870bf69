package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ldelacroix/stockroom/internal/core/domain"
)

func getRedis(t *testing.T) *redis.Client {
	addr := os.Getenv("STOCKROOM_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestTokenStore_RoundTrip(t *testing.T) {
	client := getRedis(t)
	defer client.Close()
	ctx := context.Background()

	store := NewRedisTokenStore(client)
	token := uuid.NewString()
	session := domain.Session{UserID: "user-42", Role: domain.RoleAdmin}

	require.NoError(t, store.Save(ctx, token, session, time.Minute))
	defer store.Delete(ctx, token)

	got, err := store.Get(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session, *got)
}

func TestTokenStore_UnknownToken(t *testing.T) {
	client := getRedis(t)
	defer client.Close()

	store := NewRedisTokenStore(client)
	got, err := store.Get(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTokenStore_Expiry(t *testing.T) {
	client := getRedis(t)
	defer client.Close()
	ctx := context.Background()

	store := NewRedisTokenStore(client)
	token := uuid.NewString()

	require.NoError(t, store.Save(ctx, token, domain.Session{UserID: "u", Role: domain.RoleUser}, 50*time.Millisecond))
	time.Sleep(100 * time.Millisecond)

	got, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTokenStore_Delete(t *testing.T) {
	client := getRedis(t)
	defer client.Close()
	ctx := context.Background()

	store := NewRedisTokenStore(client)
	token := uuid.NewString()

	require.NoError(t, store.Save(ctx, token, domain.Session{UserID: "u", Role: domain.RoleUser}, time.Minute))
	require.NoError(t, store.Delete(ctx, token))

	got, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, got)
}
