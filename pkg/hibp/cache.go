// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package hibp

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// A range body is around 30KiB (800 to 1000 lines).
const avgRangeSize = 32 * 1024

// CachedRanges keeps range bodies in memory. Only prefixes and public corpus
// data are stored, never the password or its full hash.
type CachedRanges struct {
	inner RangeQuery
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewCachedRanges caches up to maxBytes of range bodies, each for ttl. A zero
// ttl never expires entries.
func NewCachedRanges(inner RangeQuery, maxBytes int64, ttl time.Duration) (*CachedRanges, error) {
	items := max(maxBytes/avgRangeSize, 1)
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: max(items*10, 1000),
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &CachedRanges{inner: inner, cache: cache, ttl: ttl}, nil
}

func (c *CachedRanges) Range(ctx context.Context, prefix string) ([]byte, error) {
	if v, ok := c.cache.Get(prefix); ok {
		return v.([]byte), nil
	}

	body, err := c.inner.Range(ctx, prefix)
	if err != nil {
		return nil, err
	}

	c.cache.SetWithTTL(prefix, body, int64(len(body)), c.ttl)
	return body, nil
}

// Wait blocks until pending writes are visible to Range.
func (c *CachedRanges) Wait() {
	c.cache.Wait()
}

func (c *CachedRanges) Close() {
	c.cache.Close()
}

const (
	redisKeyPrefix = "pwd-analyzer:range:"

	// RedisTimeout bounds each cache read or write so an unresponsive Redis
	// leaves most of the lookup budget to the inner query.
	RedisTimeout = 250 * time.Millisecond

	redisDialTimeout = time.Second
)

// RedisRanges shares range bodies between instances through Redis. Redis
// errors fall back to the inner query.
type RedisRanges struct {
	inner   RangeQuery
	rdb     *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

func NewRedisRanges(inner RangeQuery, rdb *redis.Client, ttl time.Duration) *RedisRanges {
	return &RedisRanges{inner: inner, rdb: rdb, ttl: ttl, timeout: RedisTimeout}
}

// NewRedisClient connects using a redis:// URL. Timeouts not set in the URL
// are kept short and context deadlines are honored on the connection.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = redisDialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = RedisTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = RedisTimeout
	}
	opts.ContextTimeoutEnabled = true
	return redis.NewClient(opts), nil
}

func (r *RedisRanges) Range(ctx context.Context, prefix string) ([]byte, error) {
	key := redisKeyPrefix + prefix

	body, err := r.get(ctx, key)
	if err == nil {
		return body, nil
	}
	if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Msgf("redis cache read failed for range %s", prefix)
	}

	body, err = r.inner.Range(ctx, prefix)
	if err != nil {
		return nil, err
	}

	if err = r.set(ctx, key, body); err != nil {
		log.Warn().Err(err).Msgf("redis cache write failed for range %s", prefix)
	}
	return body, nil
}

func (r *RedisRanges) get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.rdb.Get(ctx, key).Bytes()
}

func (r *RedisRanges) set(ctx context.Context, key string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.rdb.Set(ctx, key, body, r.ttl).Err()
}
