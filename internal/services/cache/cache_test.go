package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Egham-7/site-context/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	}), mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	client, mr := setupRedis(t)
	c := NewRedisCache(client)

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []byte(`{"a":1}`), time.Minute))
	val, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(val))

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "d", []byte("x"), time.Minute))
	require.NoError(t, c.Delete(ctx, "d"))
	_, ok, _ = c.Get(ctx, "d")
	assert.False(t, ok)
}

func TestRedisCacheConnectionError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	_, _, err := NewRedisCache(client).Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2, time.Hour)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	val, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), val)

	now = now.Add(time.Minute)
	_, ok, _ = c.Get(ctx, "a")
	assert.False(t, ok, "entry must expire at its ttl")

	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))
	require.NoError(t, c.Set(ctx, "d", []byte("4"), 0))
	assert.Equal(t, 2, c.Len())
	_, ok, _ = c.Get(ctx, "b")
	assert.False(t, ok, "least recently used entry is evicted")

	require.NoError(t, c.Delete(ctx, "d"))
	_, ok, _ = c.Get(ctx, "d")
	assert.False(t, ok)
}

func TestMemoryCacheCopiesValue(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(4, time.Hour)
	buf := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", buf, time.Minute))
	buf[0] = 'x'

	val, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(val))
}

func TestNew(t *testing.T) {
	client, _ := setupRedis(t)

	c, err := New(models.CacheConfig{Backend: models.CacheBackendRedis}, client)
	require.NoError(t, err)
	assert.IsType(t, &RedisCache{}, c)

	_, err = New(models.CacheConfig{Backend: models.CacheBackendRedis}, nil)
	assert.Error(t, err)

	c, err = New(models.CacheConfig{Backend: models.CacheBackendMemory, Capacity: 8, TTLSeconds: 60}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)

	c, err = New(models.CacheConfig{Backend: models.CacheBackendNone}, nil)
	require.NoError(t, err)
	assert.Equal(t, Noop{}, c)

	_, err = New(models.CacheConfig{Backend: "memcached"}, nil)
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	base := FingerprintInput{
		Provider:   models.ProviderOpenAI,
		Model:      "gpt-5-mini",
		Identifier: "post-12",
		Prompt:     "Summarize",
		Format:     models.FormatMarkdown,
		Modified:   "2025-01-01T00:00:00Z",
	}
	key := Fingerprint("site_context:", base)
	assert.Equal(t, key, Fingerprint("site_context:", base))
	assert.Contains(t, key, "site_context:ctx:")

	variants := []func(in *FingerprintInput){
		func(in *FingerprintInput) { in.Provider = models.ProviderClaude },
		func(in *FingerprintInput) { in.Model = "gpt-5" },
		func(in *FingerprintInput) { in.Identifier = "post-13" },
		func(in *FingerprintInput) { in.Prompt = "Summarize briefly" },
		func(in *FingerprintInput) { in.Format = models.FormatHTML },
		func(in *FingerprintInput) { in.Modified = "2025-01-01T00:00:01Z" },
	}
	for i, mutate := range variants {
		in := base
		mutate(&in)
		assert.NotEqual(t, key, Fingerprint("site_context:", in), "variant %d", i)
	}
}
