package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend implements the fallback tier on Redis, mirroring the bounded
// local-storage contract: one key per user and kind, holding a JSON-encoded
// ordered list of records, most recent first.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend connects to Redis and verifies connectivity.
func NewRedisBackend(ctx context.Context, addr string) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisBackend{client: client}, nil
}

func redisKey(userID string, kind Kind) string {
	return "history:" + userID + ":" + string(kind)
}

// Save reads the collection, applies replace-by-id or prepend-and-cap, and
// writes it back. The single-writer-per-user access pattern makes the
// read-modify-write acceptable here.
func (b *RedisBackend) Save(ctx context.Context, userID string, kind Kind, rec Record) error {
	key := redisKey(userID, kind)
	recs, err := b.load(ctx, key)
	if err != nil {
		return err
	}

	replaced := false
	if id := rec.ID(); id != "" {
		for i := range recs {
			if recs[i].ID() == id {
				recs[i] = rec
				replaced = true
				break
			}
		}
	}
	if !replaced {
		recs = append([]Record{rec}, recs...)
		if cap := RetentionCap(kind); len(recs) > cap {
			recs = recs[:cap]
		}
	}

	data, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	return b.client.Set(ctx, key, data, 0).Err()
}

// Load returns the stored collection as-is.
func (b *RedisBackend) Load(ctx context.Context, userID string, kind Kind, limit int) ([]Record, error) {
	return b.load(ctx, redisKey(userID, kind))
}

// ClearAll deletes every collection key for the user.
func (b *RedisBackend) ClearAll(ctx context.Context, userID string) error {
	keys := make([]string, 0, len(Kinds))
	for _, kind := range Kinds {
		keys = append(keys, redisKey(userID, kind))
	}
	return b.client.Del(ctx, keys...).Err()
}

// Close releases the Redis connection.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}

func (b *RedisBackend) load(ctx context.Context, key string) ([]Record, error) {
	raw, err := b.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var recs []Record
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

var _ Backend = (*RedisBackend)(nil)
