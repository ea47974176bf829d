package pricing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const structureKeyPrefix = "pricing:structure:"

// StructureCache is an optional Redis-backed second level for resolved price
// structures, shared across processes. All methods are nil-safe so the
// resolver works without Redis configured.
type StructureCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStructureCache constructs the cache helper.
func NewStructureCache(client *redis.Client, ttl time.Duration) *StructureCache {
	return &StructureCache{client: client, ttl: ttl}
}

// Get unmarshals a cached structure map. It reports whether the key existed.
func (c *StructureCache) Get(ctx context.Context, code string) (map[int]StructureColumn, bool, error) {
	if c == nil || c.client == nil || code == "" {
		return nil, false, nil
	}
	data, err := c.client.Get(ctx, structureKeyPrefix+code).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	var columns map[int]StructureColumn
	if err := json.Unmarshal(data, &columns); err != nil {
		return nil, false, err
	}
	return columns, true, nil
}

// Set serialises the structure map as JSON and stores it with the configured TTL.
func (c *StructureCache) Set(ctx context.Context, code string, columns map[int]StructureColumn) error {
	if c == nil || c.client == nil || code == "" {
		return nil
	}
	data, err := json.Marshal(columns)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, structureKeyPrefix+code, data, c.ttl).Err()
}

// Delete drops the cached entries for the given codes.
func (c *StructureCache) Delete(ctx context.Context, codes ...string) error {
	if c == nil || c.client == nil || len(codes) == 0 {
		return nil
	}
	keys := make([]string, 0, len(codes))
	for _, code := range codes {
		keys = append(keys, structureKeyPrefix+code)
	}
	return c.client.Del(ctx, keys...).Err()
}
