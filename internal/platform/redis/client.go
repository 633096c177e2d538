// Package redis owns the optional Redis connection. The snapshot cache is the
// only consumer; with no URL configured the process runs without Redis and
// every product switch goes straight to the catalog service.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"entmatrix/internal/platform/config"
)

// Client is a connected Redis handle carrying the snapshot cache settings
// that travel with it.
type Client struct {
	*redis.Client
	snapshotTTL time.Duration
}

// Connect dials Redis from the config and verifies the connection with a
// ping. Returns (nil, nil) when no URL is configured; callers treat a nil
// client as "cache disabled".
func Connect(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Client{Client: client, snapshotTTL: cfg.SnapshotTTL}, nil
}

// SnapshotTTL is the configured lifetime for cached product snapshots.
func (c *Client) SnapshotTTL() time.Duration {
	return c.snapshotTTL
}

// Health pings the server; surfaced through /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.Client.Close()
}
