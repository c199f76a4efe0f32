package hibp

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRanges struct {
	calls int32
	body  []byte
	err   error
}

func (c *countingRanges) Range(ctx context.Context, prefix string) ([]byte, error) {
	atomic.AddInt32(&c.calls, 1)
	return c.body, c.err
}

func TestCachedRanges(t *testing.T) {
	inner := &countingRanges{body: []byte(passwordSuffix + ":3")}
	cached, err := NewCachedRanges(inner, 1<<20, time.Minute)
	require.NoError(t, err)
	defer cached.Close()

	lookup := NewLookup(cached, time.Second)

	res := lookup.Check(context.Background(), "password")
	require.NoError(t, res.Err)
	assert.Equal(t, int64(3), res.Count)
	cached.Wait()

	res = lookup.Check(context.Background(), "password")
	require.NoError(t, res.Err)
	assert.Equal(t, int64(3), res.Count)
	assert.Equal(t, int32(1), atomic.LoadInt32(&inner.calls))
}

func TestCachedRanges_DoesNotCacheFailures(t *testing.T) {
	inner := &countingRanges{err: errors.New("down")}
	cached, err := NewCachedRanges(inner, 1<<20, time.Minute)
	require.NoError(t, err)
	defer cached.Close()

	lookup := NewLookup(cached, time.Second)
	assert.True(t, lookup.Check(context.Background(), "password").Failed())
	cached.Wait()
	assert.True(t, lookup.Check(context.Background(), "password").Failed())
	assert.Equal(t, int32(2), atomic.LoadInt32(&inner.calls))
}

func TestRedisRanges(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	inner := &countingRanges{body: []byte(passwordSuffix + ":11")}
	lookup := NewLookup(NewRedisRanges(inner, rdb, time.Hour), time.Second)

	for i := 0; i < 3; i++ {
		res := lookup.Check(context.Background(), "password")
		require.NoError(t, res.Err)
		assert.Equal(t, int64(11), res.Count)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&inner.calls))

	stored, err := mr.Get(redisKeyPrefix + passwordPrefix)
	require.NoError(t, err)
	assert.Equal(t, passwordSuffix+":11", stored)
	assert.Equal(t, time.Hour, mr.TTL(redisKeyPrefix+passwordPrefix))
}

func TestRedisRanges_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	inner := &countingRanges{body: []byte(passwordSuffix + ":5")}
	res := NewLookup(NewRedisRanges(inner, rdb, time.Hour), time.Second).Check(context.Background(), "password")

	require.NoError(t, res.Err)
	assert.Equal(t, int64(5), res.Count)
}

// stalledRedis accepts connections and never answers.
func stalledRedis(t *testing.T) string {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		var conns []net.Conn
		defer func() {
			for _, c := range conns {
				_ = c.Close()
			}
		}()
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			conns = append(conns, c)
		}
	}()
	return ln.Addr().String()
}

func TestRedisRanges_RedisStalled(t *testing.T) {
	rdb, err := NewRedisClient("redis://" + stalledRedis(t) + "/0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	inner := &countingRanges{body: []byte(passwordSuffix + ":5")}
	start := time.Now()
	res := NewLookup(NewRedisRanges(inner, rdb, time.Hour), 2*time.Second).Check(context.Background(), "password")

	require.NoError(t, res.Err)
	assert.Equal(t, int64(5), res.Count)
	assert.Equal(t, int32(1), atomic.LoadInt32(&inner.calls))
	assert.Less(t, time.Since(start), 1500*time.Millisecond)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := NewRedisClient("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	defer rdb.Close()
	require.NoError(t, rdb.Ping(context.Background()).Err())

	opts := rdb.Options()
	assert.Equal(t, redisDialTimeout, opts.DialTimeout)
	assert.Equal(t, RedisTimeout, opts.ReadTimeout)
	assert.True(t, opts.ContextTimeoutEnabled)

	_, err = NewRedisClient("not a url")
	assert.Error(t, err)
}
