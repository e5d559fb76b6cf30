package blobstore

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	*MemoryStore
	gets atomic.Int64
}

func (c *countingStore) Get(ctx context.Context, name string) ([]byte, error) {
	c.gets.Add(1)
	return c.MemoryStore.Get(ctx, name)
}

func TestCachingStore(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{MemoryStore: NewMemoryStore()}
	s := NewCachingStore(inner, 2)

	testStore(t, NewCachingStore(NewMemoryStore(), 0))

	require.NoError(t, s.Put(ctx, "a", []byte("1")))
	for range 3 {
		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "1", string(got))
	}
	assert.Equal(t, int64(1), inner.gets.Load())
	hits, misses := s.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)

	got, _ := s.Get(ctx, "a")
	got[0] = 'X'
	again, _ := s.Get(ctx, "a")
	assert.Equal(t, "1", string(again), "cached blob is not aliased")

	require.NoError(t, s.Put(ctx, "a", []byte("2")))
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "2", string(got), "put invalidates")

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Get(ctx, "a")
	assert.True(t, IsNotFound(err))
}

func TestCachingStore_GetMany(t *testing.T) {
	ctx := context.Background()
	s := NewCachingStore(NewMemoryStore(), 16)
	require.NoError(t, s.Put(ctx, "x", []byte("1")))
	require.NoError(t, s.Put(ctx, "y", []byte("2")))

	got, err := s.GetMany(ctx, []string{"x", "y", "z"}, 2)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"x": []byte("1"), "y": []byte("2")}, got)
}

type hookStore struct {
	*MemoryStore
	beforeWrite func()
}

func (h *hookStore) Put(ctx context.Context, name string, data []byte) error {
	if h.beforeWrite != nil {
		h.beforeWrite()
	}
	return h.MemoryStore.Put(ctx, name, data)
}

func (h *hookStore) Delete(ctx context.Context, name string) error {
	if h.beforeWrite != nil {
		h.beforeWrite()
	}
	return h.MemoryStore.Delete(ctx, name)
}

func TestCachingStore_ReadDuringWriteIsNotCached(t *testing.T) {
	ctx := context.Background()
	inner := &hookStore{MemoryStore: NewMemoryStore()}
	s := NewCachingStore(inner, 4)

	require.NoError(t, s.Put(ctx, "a", []byte("1")))
	inner.beforeWrite = func() { _, _ = s.Get(ctx, "a") }

	require.NoError(t, s.Put(ctx, "a", []byte("2")))
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "2", string(got))

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Get(ctx, "a")
	assert.True(t, IsNotFound(err))
}
