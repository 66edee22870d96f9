package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Aside implements the cache-aside pattern for JSON-serializable values.
// On a hit the cached entry is unmarshaled into dest. On a miss (or when
// Redis is unavailable) load is called to fill dest and the result is stored
// under key with the given TTL. Cache failures never fail the request.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, load func() error) error {
	if client != nil {
		raw, err := client.Get(ctx, key).Result()
		if err == nil {
			if jsonErr := json.Unmarshal([]byte(raw), dest); jsonErr == nil {
				return nil
			}
			// Corrupt entry, drop it and fall through to the loader.
			client.Del(ctx, key)
		}
	}

	if err := load(); err != nil {
		return err
	}

	if client != nil {
		if raw, jsonErr := json.Marshal(dest); jsonErr == nil {
			client.Set(ctx, key, raw, ttl)
		}
	}

	return nil
}
