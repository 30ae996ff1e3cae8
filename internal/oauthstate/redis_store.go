package oauthstate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a redis-backed flow store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "oauthflow:",
	}
}

func (r *RedisStore) key(state string) string {
	return r.prefix + state
}

func (r *RedisStore) Save(ctx context.Context, f Flow) error {
	if f.State == "" || f.CodeVerifier == "" {
		return fmt.Errorf("oauthstate: missing state or code_verifier")
	}

	ttl := time.Until(f.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("oauthstate: expires_at must be in the future")
	}

	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("oauthstate: failed to marshal: %w", err)
	}

	return r.client.Set(ctx, r.key(f.State), data, ttl).Err()
}

func (r *RedisStore) Consume(ctx context.Context, state string) (*Flow, error) {
	val, err := r.client.GetDel(ctx, r.key(state)).Result()
	if err == redis.Nil {
		return nil, nil // unknown or expired
	}
	if err != nil {
		return nil, err
	}

	var f Flow
	if err := json.Unmarshal([]byte(val), &f); err != nil {
		return nil, fmt.Errorf("oauthstate: failed to unmarshal: %w", err)
	}

	return &f, nil
}
