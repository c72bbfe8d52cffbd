package clientcache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct{ id int32 }

func TestGetOrCreateBuildsOnce(t *testing.T) {
	cache := NewCache[*fakeClient]()
	var calls atomic.Int32

	var wg sync.WaitGroup
	results := make([]*fakeClient, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := cache.GetOrCreate("openai:abc", func() (*fakeClient, error) {
				return &fakeClient{id: calls.Add(1)}, nil
			})
			assert.NoError(t, err)
			results[i] = c
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, c := range results {
		assert.Same(t, results[0], c)
	}
	assert.Equal(t, 1, cache.Len())
}

func TestGetOrCreateDoesNotCacheErrors(t *testing.T) {
	cache := NewCache[*fakeClient]()

	_, err := cache.GetOrCreate("k", func() (*fakeClient, error) {
		return nil, errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())

	c, err := cache.GetOrCreate("k", func() (*fakeClient, error) {
		return &fakeClient{id: 7}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(7), c.id)
}

func TestDeleteForcesRebuild(t *testing.T) {
	cache := NewCache[*fakeClient]()
	var calls atomic.Int32
	factory := func() (*fakeClient, error) {
		return &fakeClient{id: calls.Add(1)}, nil
	}

	first, err := cache.GetOrCreate("k", factory)
	require.NoError(t, err)
	cache.Delete("k")
	cache.Delete("missing")
	assert.Equal(t, 0, cache.Len())

	second, err := cache.GetOrCreate("k", factory)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, int32(2), calls.Load())
}
