package i18n

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTier shares decoded bundles between website instances.
type RedisTier struct {
	client *redis.Client
	prefix string
}

// NewRedisTier stores bundles under "<prefix>:<namespace>:<language>".
func NewRedisTier(client *redis.Client, prefix string) *RedisTier {
	return &RedisTier{client: client, prefix: prefix}
}

func (r *RedisTier) key(k string) string {
	return r.prefix + ":" + k
}

func (r *RedisTier) Get(ctx context.Context, key string) (Bundle, bool, error) {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var b Bundle
	if err = json.Unmarshal(raw, &b); err != nil {
		return nil, false, fmt.Errorf("decode bundle: %w", err)
	}
	return b, true, nil
}

func (r *RedisTier) Set(ctx context.Context, key string, b Bundle, ttl time.Duration) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	return r.client.Set(ctx, r.key(key), raw, ttl).Err()
}

func (r *RedisTier) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *RedisTier) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.key("*"), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}
