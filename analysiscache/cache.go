// Package analysiscache stores the results of external image analyses with
// an expiry, keyed by image path.
//
// Entries live in a blobstore.Store under "analysis/<blake3(path)>", encoded
// with a codec envelope and a compression frame:
//
//	cache := analysiscache.New(blobstore.NewLocalStore(dir))
//	_ = cache.Put(ctx, "attachments/sunset.jpg", &model.Analysis{Tags: []string{"beach"}})
//	a, ok, err := cache.Get(ctx, "attachments/sunset.jpg")
package analysiscache

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/zeebo/blake3"

	"github.com/hupe1980/imgdex/blobstore"
	"github.com/hupe1980/imgdex/codec"
	"github.com/hupe1980/imgdex/internal/compress"
	"github.com/hupe1980/imgdex/model"
)

// KeyPrefix is the blob name prefix of all cache entries.
const KeyPrefix = "analysis/"

// Key returns the blob name for an image path.
func Key(path string) string {
	sum := blake3.Sum256([]byte(path))
	return KeyPrefix + hex.EncodeToString(sum[:])
}

type entry struct {
	Path     string         `json:"path"`
	Stored   time.Time      `json:"stored"`
	Analysis model.Analysis `json:"analysis"`
}

// Cache is an analysis cache over a blob store. It is safe for concurrent
// use when the store is.
type Cache struct {
	store blobstore.Store
	opts  options
}

// New returns a cache backed by store.
func New(store blobstore.Store, optFns ...Option) *Cache {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Cache{store: store, opts: opts}
}

// TTL returns the configured entry lifetime.
func (c *Cache) TTL() time.Duration { return c.opts.ttl }

func (c *Cache) expired(e *entry) bool {
	return c.opts.ttl > 0 && c.opts.now().Sub(e.Stored) >= c.opts.ttl
}

// Get returns the cached analysis for path. Missing, expired and unreadable
// entries are reported as a miss; only storage failures return an error.
func (c *Cache) Get(ctx context.Context, path string) (*model.Analysis, bool, error) {
	e, err := c.load(ctx, Key(path))
	if err != nil {
		if blobstore.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if e == nil || e.Path != path || c.expired(e) {
		return nil, false, nil
	}
	return &e.Analysis, true, nil
}

// batchGetter is implemented by stores that fetch several blobs at once,
// such as blobstore.CachingStore.
type batchGetter interface {
	GetMany(ctx context.Context, names []string, concurrency int) (map[string][]byte, error)
}

// GetMany returns the live cached analyses of paths, keyed by path. Misses
// are absent from the result; only storage failures return an error.
func (c *Cache) GetMany(ctx context.Context, paths []string) (map[string]*model.Analysis, error) {
	keys := make([]string, len(paths))
	for i, p := range paths {
		keys[i] = Key(p)
	}

	blobs, err := c.fetch(ctx, keys)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*model.Analysis, len(blobs))
	for i, p := range paths {
		data, ok := blobs[keys[i]]
		if !ok {
			continue
		}
		e := c.decode(keys[i], data)
		if e == nil || e.Path != p || c.expired(e) {
			continue
		}
		out[p] = &e.Analysis
	}
	return out, nil
}

func (c *Cache) fetch(ctx context.Context, keys []string) (map[string][]byte, error) {
	if bg, ok := c.store.(batchGetter); ok {
		return bg.GetMany(ctx, keys, 0)
	}
	out := make(map[string][]byte, len(keys))
	for _, key := range keys {
		data, err := c.store.Get(ctx, key)
		if err != nil {
			if blobstore.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		out[key] = data
	}
	return out, nil
}

// load returns (nil, nil) for entries that cannot be decoded.
func (c *Cache) load(ctx context.Context, key string) (*entry, error) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return c.decode(key, data), nil
}

func (c *Cache) decode(key string, data []byte) *entry {
	raw, err := compress.Decode(data)
	if err != nil {
		c.opts.logger.Warn("analysis cache entry unreadable", "key", key, "error", err)
		return nil
	}
	var e entry
	if _, err := codec.UnmarshalEnvelope(raw, &e); err != nil {
		c.opts.logger.Warn("analysis cache entry unreadable", "key", key, "error", err)
		return nil
	}
	return &e
}

// Put stores a copy of a, stamped with the current time.
func (c *Cache) Put(ctx context.Context, path string, a *model.Analysis) error {
	if a == nil {
		return fmt.Errorf("analysiscache: nil analysis for %q", path)
	}
	e := entry{Path: path, Stored: c.opts.now().UTC(), Analysis: *a.Clone()}
	raw, err := codec.MarshalEnvelope(c.opts.codec, &e)
	if err != nil {
		return fmt.Errorf("analysiscache: encode %q: %w", path, err)
	}
	data, err := compress.Encode(raw, c.opts.compression)
	if err != nil {
		return fmt.Errorf("analysiscache: compress %q: %w", path, err)
	}
	if err := c.store.Put(ctx, Key(path), data); err != nil {
		return err
	}
	c.opts.logger.Debug("analysis cached", "path", path)
	return nil
}

// Delete drops the entry for path. Deleting a missing entry is not an error.
func (c *Cache) Delete(ctx context.Context, path string) error {
	return c.store.Delete(ctx, Key(path))
}

// Purge deletes expired and unreadable entries and returns how many were
// removed.
func (c *Cache) Purge(ctx context.Context) (int, error) {
	keys, err := c.store.List(ctx, KeyPrefix)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		e, err := c.load(ctx, key)
		if err != nil {
			if blobstore.IsNotFound(err) {
				continue
			}
			return removed, err
		}
		if e != nil && !c.expired(e) {
			continue
		}
		if err := c.store.Delete(ctx, key); err != nil {
			return removed, err
		}
		removed++
	}

	c.opts.logger.Debug("analysis cache purged", "scanned", len(keys), "removed", removed)
	return removed, nil
}
