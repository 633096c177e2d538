// Package cache is a read-through Redis cache for product snapshots, cutting
// catalog round-trips when administrators switch back and forth between
// products. A miss or a Redis failure falls back to the catalog service.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"entmatrix/internal/catalog"
	"entmatrix/pkg/platform/sentinel"
)

const snapshotKeyPrefix = "matrix:snapshot:"

// SnapshotCache stores per-product snapshot JSON with a TTL.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New builds a snapshot cache. Callers must pass a connected client.
func New(client *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl}
}

// Get returns the cached snapshot for a product, sentinel.ErrNotFound on miss.
func (c *SnapshotCache) Get(ctx context.Context, productID string) (*catalog.Snapshot, error) {
	payload, err := c.client.Get(ctx, snapshotKeyPrefix+productID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var snap catalog.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &snap, nil
}

// Save stores a snapshot with the configured TTL.
func (c *SnapshotCache) Save(ctx context.Context, productID string, snap *catalog.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, snapshotKeyPrefix+productID, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot for a product. Called after successful
// saves so the next load sees confirmed server state.
func (c *SnapshotCache) Invalidate(ctx context.Context, productID string) error {
	if err := c.client.Del(ctx, snapshotKeyPrefix+productID).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}
