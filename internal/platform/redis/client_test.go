package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entmatrix/internal/platform/config"
)

func TestConnect(t *testing.T) {
	t.Run("empty URL disables the cache", func(t *testing.T) {
		client, err := Connect(context.Background(), config.RedisConfig{})
		require.NoError(t, err)
		assert.Nil(t, client)
	})

	t.Run("malformed URL is rejected", func(t *testing.T) {
		_, err := Connect(context.Background(), config.RedisConfig{URL: "://nope"})
		assert.Error(t, err)
	})

	t.Run("unreachable server fails the ping", func(t *testing.T) {
		cfg := config.RedisConfig{
			URL:         "redis://127.0.0.1:1",
			DialTimeout: 100 * time.Millisecond,
			SnapshotTTL: time.Minute,
		}
		_, err := Connect(context.Background(), cfg)
		assert.Error(t, err)
	})
}
