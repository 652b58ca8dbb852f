// internal/common/cache/redis_test.go
package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icebreaker-service/internal/common/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client, err := New(config.CacheConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestClient_SetGet(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "profile:url", `{"person":{}}`, time.Minute))

	val, err := client.Get(ctx, "profile:url")
	assert.NoError(t, err)
	assert.Equal(t, `{"person":{}}`, val)
}

func TestClient_GetMiss(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Get(context.Background(), "missing")
	assert.Error(t, err)
	assert.True(t, IsMiss(err))
}

func TestClient_Expiration(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", "v", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := client.Get(ctx, "k")
	assert.True(t, IsMiss(err))
}

func TestClient_Ping(t *testing.T) {
	client, _ := newTestClient(t)
	assert.NoError(t, client.Ping(context.Background()))
}
