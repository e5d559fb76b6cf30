package blobstore

import (
	"context"
	"slices"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
)

// CachingStore wraps a Store and keeps recently read blobs in an LRU.
// Writes and deletes go through to the inner store and invalidate the
// cached entry. It is meant for remote backends where a Get is a network
// round trip.
type CachingStore struct {
	inner Store
	cache *lru.Cache[string, []byte]

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachingStore creates a CachingStore holding up to entries blobs.
// entries defaults to 1024 if <= 0.
func NewCachingStore(inner Store, entries int) *CachingStore {
	if entries <= 0 {
		entries = 1024
	}
	c, _ := lru.New[string, []byte](entries) // only fails for size <= 0
	return &CachingStore{inner: inner, cache: c}
}

// Get returns a blob, consulting the cache first.
func (s *CachingStore) Get(ctx context.Context, name string) ([]byte, error) {
	if data, ok := s.cache.Get(name); ok {
		s.hits.Add(1)
		return slices.Clone(data), nil
	}
	s.misses.Add(1)

	data, err := s.inner.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	s.cache.Add(name, slices.Clone(data))
	return data, nil
}

// GetMany fetches several blobs concurrently. Missing blobs are absent from
// the result; any other error aborts.
func (s *CachingStore) GetMany(ctx context.Context, names []string, concurrency int) (map[string][]byte, error) {
	if concurrency <= 0 {
		concurrency = 8
	}
	results := make([][]byte, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, name := range names {
		g.Go(func() error {
			data, err := s.Get(gctx, name)
			if IsNotFound(err) {
				return nil
			}
			results[i] = data
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(names))
	for i, name := range names {
		if results[i] != nil {
			out[name] = results[i]
		}
	}
	return out, nil
}

// Put writes through and invalidates the cached copy. The entry is evicted
// after the write so a concurrent Get cannot re-cache the old blob.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	err := s.inner.Put(ctx, name, data)
	s.cache.Remove(name)
	return err
}

// Delete writes through and invalidates the cached copy.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	err := s.inner.Delete(ctx, name)
	s.cache.Remove(name)
	return err
}

// List is not cached.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns cache hits and misses.
func (s *CachingStore) Stats() (hits, misses int64) {
	return s.hits.Load(), s.misses.Load()
}
