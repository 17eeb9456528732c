package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyNamespace  = "console"
	sessionPrefix = "session"
)

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// RedisRepo stores records as JSON values that expire after the TTL.
type RedisRepo struct {
	store cmdable
	raw   *redis.Client
	ttl   time.Duration
}

// NewRedisRepo connects using a redis:// URL and verifies connectivity.
func NewRedisRepo(ctx context.Context, redisURL string, ttl time.Duration) (*RedisRepo, error) {
	if redisURL == "" {
		return nil, errors.New("redis url is required")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisRepo{store: raw, raw: raw, ttl: ttl}, nil
}

func (r *RedisRepo) Load(ctx context.Context, id string) (Record, error) {
	val, err := r.store.Get(ctx, r.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return Record{}, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return rec, nil
}

// Save refreshes the TTL on every write.
func (r *RedisRepo) Save(ctx context.Context, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, r.key(rec.ID), string(raw), r.ttl).Err()
}

func (r *RedisRepo) Delete(ctx context.Context, id string) error {
	return r.store.Del(ctx, r.key(id)).Err()
}

func (r *RedisRepo) Ping(ctx context.Context) error {
	return r.store.Ping(ctx).Err()
}

func (r *RedisRepo) Close() error {
	if r.raw == nil {
		return nil
	}
	return r.raw.Close()
}

func (r *RedisRepo) key(id string) string {
	return buildKey(sessionPrefix, id)
}

func buildKey(parts ...string) string {
	clean := []string{keyNamespace}
	for _, part := range parts {
		if part == "" {
			continue
		}
		clean = append(clean, strings.TrimSpace(part))
	}
	return strings.Join(clean, ":")
}
