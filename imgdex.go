package imgdex

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/imgdex/analysiscache"
	"github.com/hupe1980/imgdex/blobstore"
	"github.com/hupe1980/imgdex/catalog"
	"github.com/hupe1980/imgdex/model"
	"github.com/hupe1980/imgdex/scan"
)

// Catalog is an image catalog: a searchable index of image records fed by
// directory scans, with tags, cached analyses and snapshots.
//
// All methods are safe for concurrent use.
type Catalog struct {
	index *catalog.Index
	store blobstore.Store
	cache *analysiscache.Cache
	opts  options

	// mu serializes read-modify-write mutations of single records and
	// guards scanner.
	mu      sync.Mutex
	scanner *scan.Scanner
	closed  atomic.Bool
}

// New creates an empty catalog.
func New(optFns ...Option) *Catalog {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	store := opts.store
	if store == nil {
		store = blobstore.NewMemoryStore()
	}
	if opts.blobCacheEntries > 0 {
		store = blobstore.NewCachingStore(store, opts.blobCacheEntries)
	}

	return &Catalog{
		index: catalog.New(
			catalog.WithLogger(opts.logger.Logger),
			catalog.WithLanguage(opts.language),
		),
		store: store,
		cache: analysiscache.New(store,
			analysiscache.WithTTL(opts.cacheTTL),
			analysiscache.WithCodec(opts.codec),
			analysiscache.WithCompression(opts.compression),
			analysiscache.WithLogger(opts.logger.Logger),
		),
		opts: opts,
	}
}

// Index returns the underlying catalog index.
func (c *Catalog) Index() *catalog.Index { return c.index }

// Analyses returns the analysis cache.
func (c *Catalog) Analyses() *analysiscache.Cache { return c.cache }

func (c *Catalog) checkOpen() error {
	if c.closed.Load() {
		return ErrClosed
	}
	return nil
}

// Scan catalogs the images below root, replacing the current contents.
// Cached analyses are attached to the new records, and tags of paths that
// were already cataloged are carried over.
func (c *Catalog) Scan(ctx context.Context, root string) (*scan.Result, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	start := time.Now()

	logger := c.opts.logger.WithRoot(root)
	scanner := scan.New(root, append([]scan.Option{scan.WithLogger(logger.Logger)}, c.opts.scanOptions...)...)
	res, err := scanner.Scan(ctx)
	if err == nil {
		err = c.enrichAll(ctx, res.Records)
	}
	if err != nil {
		c.opts.metricsCollector.RecordScan(0, 0, time.Since(start), err)
		c.opts.logger.LogScan(ctx, root, 0, 0, err)
		return nil, err
	}

	c.mu.Lock()
	c.index.IndexAll(res.Records)
	c.scanner = scanner
	c.mu.Unlock()

	if cs, ok := c.store.(*blobstore.CachingStore); ok {
		hits, misses := cs.Stats()
		logger.DebugContext(ctx, "blob cache", "hits", hits, "misses", misses)
	}

	c.opts.metricsCollector.RecordScan(len(res.Records), len(res.Failures), time.Since(start), nil)
	c.opts.logger.LogScan(ctx, root, len(res.Records), len(res.Failures), nil)
	return res, nil
}

// enrichAll attaches cached analyses and previous tags to scanned records,
// fetching the analyses in one batch.
func (c *Catalog) enrichAll(ctx context.Context, recs []model.Record) error {
	paths := make([]string, len(recs))
	for i := range recs {
		paths[i] = recs[i].Path
	}
	analyses, err := c.cache.GetMany(ctx, paths)
	if err != nil {
		return fmt.Errorf("analysis cache: %w", err)
	}
	for i := range recs {
		c.carryOver(&recs[i])
		if a, ok := analyses[recs[i].Path]; ok {
			recs[i].Analysis = a
		}
	}
	return nil
}

// carryOver copies tags and the description of the cataloged record with
// the same path.
func (c *Catalog) carryOver(rec *model.Record) {
	prev, ok := c.index.Get(rec.Path)
	if !ok {
		return
	}
	for _, tag := range prev.Tags {
		rec.AddTag(tag)
	}
	if rec.Description == "" {
		rec.Description = prev.Description
	}
}

// enrich attaches the cached analysis and the previously cataloged tags.
func (c *Catalog) enrich(ctx context.Context, rec *model.Record) error {
	c.carryOver(rec)

	a, ok, err := c.cache.Get(ctx, rec.Path)
	if err != nil {
		return fmt.Errorf("analysis cache %s: %w", rec.Path, err)
	}
	if ok {
		rec.Analysis = a
	}
	return nil
}

// Rescan re-reads one file below the last scanned root and updates its
// record.
func (c *Catalog) Rescan(ctx context.Context, path string) (model.Record, error) {
	if err := c.checkOpen(); err != nil {
		return model.Record{}, err
	}

	c.mu.Lock()
	scanner := c.scanner
	c.mu.Unlock()
	if scanner == nil {
		return model.Record{}, ErrNoRoot
	}

	start := time.Now()
	rec, err := scanner.Rescan(ctx, path)
	if err == nil {
		err = c.enrich(ctx, &rec)
	}
	if err != nil {
		c.opts.metricsCollector.RecordUpsert(time.Since(start), err)
		c.opts.logger.LogUpsert(ctx, path, err)
		return model.Record{}, translateError(err)
	}

	c.mu.Lock()
	c.index.Upsert(rec)
	c.mu.Unlock()

	c.opts.metricsCollector.RecordUpsert(time.Since(start), nil)
	c.opts.logger.LogUpsert(ctx, path, nil)
	return rec.Clone(), nil
}

// Upsert adds rec or replaces the record with the same path.
func (c *Catalog) Upsert(ctx context.Context, rec model.Record) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	start := time.Now()

	var err error
	if rec.Path == "" {
		err = ErrInvalidRecord
	} else {
		c.mu.Lock()
		c.index.Upsert(rec)
		c.mu.Unlock()
	}

	c.opts.metricsCollector.RecordUpsert(time.Since(start), err)
	c.opts.logger.LogUpsert(ctx, rec.Path, err)
	return err
}

// Remove deletes the record at path and reports whether it was cataloged.
// Removing an unknown path is a no-op.
func (c *Catalog) Remove(ctx context.Context, path string) (bool, error) {
	if err := c.checkOpen(); err != nil {
		return false, err
	}
	start := time.Now()

	c.mu.Lock()
	removed := c.index.Remove(path)
	c.mu.Unlock()

	if !removed {
		c.opts.logger.WithPath(path).DebugContext(ctx, "remove skipped, path not cataloged")
		return false, nil
	}

	c.opts.metricsCollector.RecordRemove(time.Since(start), nil)
	c.opts.logger.LogRemove(ctx, path, nil)
	return true, nil
}

// Get returns a copy of the record at path.
func (c *Catalog) Get(path string) (model.Record, error) {
	if err := c.checkOpen(); err != nil {
		return model.Record{}, err
	}
	rec, ok := c.index.Get(path)
	if !ok {
		return model.Record{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return rec, nil
}

// Query returns the records matching f in the requested order.
func (c *Catalog) Query(ctx context.Context, f catalog.Filter) ([]model.Record, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	start := time.Now()

	recs := c.index.Query(f)

	c.opts.metricsCollector.RecordQuery(len(recs), time.Since(start))
	c.opts.logger.LogQuery(ctx, f.SearchText, len(recs))
	return recs, nil
}

// Count returns the number of records matching f.
func (c *Catalog) Count(f catalog.Filter) int {
	return c.index.Count(f)
}

// Size returns the number of cataloged records.
func (c *Catalog) Size() int {
	return c.index.Size()
}

// Tags returns every tag name with the number of records carrying it.
func (c *Catalog) Tags() map[string]int {
	return c.index.TagCounts()
}

// mutate applies fn to the record at path and stores the result when fn
// reports a change.
func (c *Catalog) mutate(ctx context.Context, path string, fn func(*model.Record) (bool, error)) (bool, error) {
	if err := c.checkOpen(); err != nil {
		return false, err
	}
	start := time.Now()

	c.mu.Lock()
	changed, err := func() (bool, error) {
		rec, ok := c.index.Get(path)
		if !ok {
			return false, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		changed, err := fn(&rec)
		if err != nil || !changed {
			return false, err
		}
		c.index.Update(path, rec)
		return true, nil
	}()
	c.mu.Unlock()

	c.opts.metricsCollector.RecordUpsert(time.Since(start), err)
	c.opts.logger.LogUpsert(ctx, path, err)
	return changed, err
}

// AddTag attaches tag to the record at path. It reports false when a tag
// with the same name is already attached. An empty ID is derived from the
// name and category.
func (c *Catalog) AddTag(ctx context.Context, path string, tag model.Tag) (bool, error) {
	if tag.Name == "" {
		return false, errors.New("tag name must not be empty")
	}
	if tag.Category == "" {
		tag.Category = model.TagManual
	}
	if tag.ID == "" {
		tag.ID = string(tag.Category) + "-" + tag.Name
	}
	return c.mutate(ctx, path, func(rec *model.Record) (bool, error) {
		return rec.AddTag(tag), nil
	})
}

// RemoveTag detaches the tag with the given id from the record at path.
func (c *Catalog) RemoveTag(ctx context.Context, path, id string) (bool, error) {
	return c.mutate(ctx, path, func(rec *model.Record) (bool, error) {
		return rec.RemoveTag(id), nil
	})
}

// ApplyAutoTags attaches analysis tags to the record at path and returns
// how many were new.
func (c *Catalog) ApplyAutoTags(ctx context.Context, path string, names []string) (int, error) {
	added := 0
	_, err := c.mutate(ctx, path, func(rec *model.Record) (bool, error) {
		added = rec.ApplyAutoTags(names)
		return added > 0, nil
	})
	return added, err
}

// SetAnalysis stores an analysis result for the record at path, caches it
// for later scans and applies its tags as auto tags.
func (c *Catalog) SetAnalysis(ctx context.Context, path string, a *model.Analysis) error {
	if a == nil {
		return errors.New("analysis must not be nil")
	}
	_, err := c.mutate(ctx, path, func(rec *model.Record) (bool, error) {
		if err := c.cache.Put(ctx, path, a); err != nil {
			return false, err
		}
		rec.Analysis = a.Clone()
		rec.ApplyAutoTags(a.Tags)
		return true, nil
	})
	return err
}

// Close releases the catalog. Other methods return ErrClosed afterwards;
// Close itself is idempotent.
func (c *Catalog) Close() error {
	if c == nil || c.closed.Swap(true) {
		return nil
	}
	c.index.Clear()
	c.opts.logger.Debug("catalog closed")
	return nil
}
