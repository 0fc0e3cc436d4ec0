package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pagecraft/article/internal/compress"
	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrMiss is returned by Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// Cache is the key-value adapter used by the read path. An unreachable or
// absent cache must degrade, never fail the caller.
type Cache interface {
	// Key builds the wire format cache key for a namespaced entry.
	Key(lang, category, path string) string
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Remove(ctx context.Context, keys ...string) error
	// Keys enumerates every key under the cache namespace.
	Keys(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

var _ Cache = (*Redis)(nil)

// Redis is the redis-backed cache. A nil client means "no cache configured"
// and every operation degrades to a miss.
type Redis struct {
	client    *redis.Client
	namespace string
	codec     compress.Compress
}

func NewRedis(addr, password string, db int, namespace string, codec compress.Compress) *Redis {
	var client *redis.Client
	if addr != "" {
		client = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		})
	}

	return &Redis{client: client, namespace: namespace, codec: codec}
}

// NewUnavailable returns a cache with no backing client, used when no redis
// address is configured.
func NewUnavailable(namespace string) *Redis {
	return &Redis{client: nil, namespace: namespace, codec: compress.NewNop()}
}

// Key builds the wire format cache key: namespace, language, category and the
// normalized path, colon separated.
func (r *Redis) Key(lang, category, path string) string {
	return fmt.Sprintf("%s:%s:%s:%s", r.namespace, lang, category, path)
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	if r.client == nil {
		return nil, ErrMiss
	}

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}

	return r.codec.Decode(data)
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}

	data, err := r.codec.Encode(value)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *Redis) Remove(ctx context.Context, keys ...string) error {
	if r.client == nil || len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *Redis) Keys(ctx context.Context) ([]string, error) {
	if r.client == nil {
		return nil, ErrMiss
	}

	var keys []string
	iter := r.client.Scan(ctx, 0, r.namespace+":*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	return keys, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	if r.client == nil {
		return errors.New("redis client is nil")
	}

	if err := r.client.Ping(ctx).Err(); err != nil {
		logrus.Warnf("redis unreachable: %v", err)
		return err
	}

	return nil
}
