package imgdex

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/imgdex/blobstore"
	"github.com/hupe1980/imgdex/catalog"
	"github.com/hupe1980/imgdex/codec"
	"github.com/hupe1980/imgdex/exif"
	"github.com/hupe1980/imgdex/internal/compress"
	"github.com/hupe1980/imgdex/metadata"
	"github.com/hupe1980/imgdex/model"
	"github.com/hupe1980/imgdex/scan"
	"github.com/hupe1980/imgdex/testutil"
)

func record(path string, size int64) model.Record {
	return model.Record{
		Path:    path,
		Name:    filepath.Base(path),
		Format:  filepath.Ext(path)[1:],
		Size:    size,
		Created: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func writePNG(t *testing.T, root, rel string) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0o644))
}

func TestCatalog_UpsertGetRemove(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	c := New(WithMetricsCollector(metrics))
	defer c.Close()

	require.NoError(t, c.Upsert(ctx, record("a/sunset.jpg", 10)))
	require.NoError(t, c.Upsert(ctx, record("a/sunrise.png", 20)))
	assert.Equal(t, 2, c.Size())

	got, err := c.Get("a/sunset.jpg")
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Size)

	assert.ErrorIs(t, c.Upsert(ctx, model.Record{}), ErrInvalidRecord)

	removed, err := c.Remove(ctx, "a/sunset.jpg")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = c.Remove(ctx, "a/sunset.jpg")
	require.NoError(t, err, "removing an unknown path is a no-op")
	assert.False(t, removed)

	removed, err = c.Remove(ctx, "never/indexed.jpg")
	require.NoError(t, err)
	assert.False(t, removed)
	_, err = c.Get("a/sunset.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, c.Size())

	stats := metrics.GetStats()
	assert.Equal(t, int64(3), stats.UpsertCount)
	assert.Equal(t, int64(1), stats.UpsertErrors)
	assert.Equal(t, int64(1), stats.RemoveCount)
	assert.Equal(t, int64(0), stats.RemoveErrors)
}

func TestCatalog_Query(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	c := New(WithMetricsCollector(metrics))

	for _, r := range testutil.NewRNG(7).Records(100) {
		require.NoError(t, c.Upsert(ctx, r))
	}

	all, err := c.Query(ctx, catalog.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 100)

	f := catalog.Filter{
		FileTypes: []string{"jpg", "jpeg"},
		Where:     []metadata.Filter{{Key: model.FieldISO, Operator: metadata.OpGreaterEqual, Value: metadata.Int(400)}},
		SortBy:    catalog.SortBySize,
		SortOrder: catalog.Descending,
	}
	recs, err := c.Query(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, len(recs), c.Count(f))
	for i, r := range recs {
		assert.Contains(t, []string{"jpg", "jpeg"}, r.Format)
		iso, ok := r.Exif.Get(exif.TagISO)
		require.True(t, ok)
		u, _ := iso.Uint()
		assert.GreaterOrEqual(t, u, uint32(400))
		if i > 0 {
			assert.LessOrEqual(t, r.Size, recs[i-1].Size)
		}
	}

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.QueryCount)
	assert.Equal(t, int64(100+len(recs)), stats.QueryResults)
}

func TestCatalog_Tags(t *testing.T) {
	ctx := context.Background()
	c := New()
	require.NoError(t, c.Upsert(ctx, record("a.jpg", 1)))
	require.NoError(t, c.Upsert(ctx, record("b.jpg", 1)))

	added, err := c.AddTag(ctx, "a.jpg", model.Tag{Name: "beach"})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = c.AddTag(ctx, "a.jpg", model.Tag{Name: "beach", ID: "other"})
	require.NoError(t, err)
	assert.False(t, added, "names are unique per record")

	_, err = c.AddTag(ctx, "missing.jpg", model.Tag{Name: "beach"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.AddTag(ctx, "a.jpg", model.Tag{})
	assert.Error(t, err)

	n, err := c.ApplyAutoTags(ctx, "b.jpg", []string{"beach", "sky", "beach"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rec, err := c.Get("b.jpg")
	require.NoError(t, err)
	require.Len(t, rec.Tags, 2)
	assert.Equal(t, "ai-b.jpg-0", rec.Tags[0].ID)
	assert.Equal(t, model.TagAuto, rec.Tags[0].Category)
	require.NotNil(t, rec.Tags[0].Confidence)
	assert.Equal(t, 0.8, *rec.Tags[0].Confidence)

	assert.Equal(t, map[string]int{"beach": 2, "sky": 1}, c.Tags())

	recs, err := c.Query(ctx, catalog.Filter{SelectedTags: []string{"sky"}})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "b.jpg", recs[0].Path)

	removed, err := c.RemoveTag(ctx, "b.jpg", "ai-b.jpg-1")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = c.RemoveTag(ctx, "b.jpg", "ai-b.jpg-1")
	require.NoError(t, err)
	assert.False(t, removed)

	recs, err = c.Query(ctx, catalog.Filter{SelectedTags: []string{"sky"}})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestCatalog_ConcurrentTagging(t *testing.T) {
	ctx := context.Background()
	c := New()
	require.NoError(t, c.Upsert(ctx, record("a.jpg", 1)))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.AddTag(ctx, "a.jpg", model.Tag{Name: string(rune('a' + i))})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := c.Get("a.jpg")
	require.NoError(t, err)
	assert.Len(t, rec.Tags, 20)
}

func TestCatalog_ScanKeepsTagsAndAnalyses(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writePNG(t, root, "img/sunset.png")
	writePNG(t, root, "img/forest.png")
	require.NoError(t, os.WriteFile(filepath.Join(root, "trip.md"), []byte("![[sunset.png]]"), 0o644))

	metrics := &BasicMetricsCollector{}
	c := New(
		WithStore(blobstore.NewLocalStore(t.TempDir())),
		WithMetricsCollector(metrics),
		WithScanOptions(scan.WithSizeRange(0, 0)),
	)

	_, err := c.Rescan(ctx, "img/sunset.png")
	assert.ErrorIs(t, err, ErrNoRoot)

	res, err := c.Scan(ctx, root)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 2, c.Size())

	sunset, err := c.Get("img/sunset.png")
	require.NoError(t, err)
	assert.Equal(t, model.Dimensions{Width: 4, Height: 4}, sunset.Dimensions)
	assert.Equal(t, []string{"trip.md"}, sunset.RelatedNotes)

	_, err = c.AddTag(ctx, "img/sunset.png", model.Tag{Name: "favorite"})
	require.NoError(t, err)
	require.NoError(t, c.SetAnalysis(ctx, "img/forest.png", &model.Analysis{
		Tags:    []string{"trees"},
		Quality: &model.Quality{Score: 0.9},
	}))

	// Rescanning carries tags over and reattaches the cached analysis.
	_, err = c.Scan(ctx, root)
	require.NoError(t, err)

	sunset, err = c.Get("img/sunset.png")
	require.NoError(t, err)
	assert.True(t, sunset.HasTag("favorite"))

	forest, err := c.Get("img/forest.png")
	require.NoError(t, err)
	require.NotNil(t, forest.Analysis)
	assert.Equal(t, 0.9, forest.QualityScore())
	assert.True(t, forest.HasTag("trees"))

	recs, err := c.Query(ctx, catalog.Filter{QualityRange: catalog.AtLeast(0.5)})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "img/forest.png", recs[0].Path)

	rescanned, err := c.Rescan(ctx, "img/forest.png")
	require.NoError(t, err)
	assert.True(t, rescanned.HasTag("trees"))
	assert.NotNil(t, rescanned.Analysis)

	_, err = c.Rescan(ctx, "img/missing.png")
	assert.ErrorIs(t, err, os.ErrNotExist)

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.ScanCount)
	assert.Equal(t, int64(4), stats.ScannedImages)
}

func TestCatalog_ScanBatchesCachedAnalyses(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writePNG(t, root, "a.png")
	writePNG(t, root, "b.png")

	var logs bytes.Buffer
	c := New(
		WithLogger(NewLogger(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))),
		WithBlobCache(16),
		WithScanOptions(scan.WithSizeRange(0, 0)),
	)

	_, err := c.Scan(ctx, root)
	require.NoError(t, err)
	require.NoError(t, c.SetAnalysis(ctx, "a.png", &model.Analysis{Description: "sky"}))

	for range 2 {
		_, err = c.Scan(ctx, root)
		require.NoError(t, err)
	}

	rec, err := c.Get("a.png")
	require.NoError(t, err)
	require.NotNil(t, rec.Analysis)
	assert.Equal(t, "sky", rec.Analysis.Description)

	b, err := c.Get("b.png")
	require.NoError(t, err)
	assert.Nil(t, b.Analysis)

	cs, ok := c.store.(*blobstore.CachingStore)
	require.True(t, ok)
	hits, _ := cs.Stats()
	assert.Positive(t, hits)
	assert.Contains(t, logs.String(), "blob cache")
	assert.Contains(t, logs.String(), "root=")
}

func TestCatalog_ScanError(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	c := New(WithMetricsCollector(metrics))

	_, err := c.Scan(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
	assert.Equal(t, int64(1), metrics.GetStats().ScanErrors)
}

func TestCatalog_Snapshot(t *testing.T) {
	for _, tc := range []struct {
		codec       codec.Codec
		compression compress.Type
	}{
		{codec.GoJSON{}, compress.Zstd},
		{codec.JSON{}, compress.None},
		{codec.CBOR{}, compress.LZ4},
	} {
		t.Run(tc.codec.Name(), func(t *testing.T) {
			ctx := context.Background()
			store := blobstore.NewLocalStore(t.TempDir())
			metrics := &BasicMetricsCollector{}
			recs := testutil.NewRNG(11).Records(40)

			src := New(WithStore(store), WithCodec(tc.codec), WithCompression(tc.compression), WithMetricsCollector(metrics))
			for _, r := range recs {
				require.NoError(t, src.Upsert(ctx, r))
			}
			require.NoError(t, src.SaveSnapshot(ctx))

			dst := New(WithStore(store), WithBlobCache(8))
			require.NoError(t, dst.LoadSnapshot(ctx))
			assert.Equal(t, src.Index().Records(), dst.Index().Records())

			stats := metrics.GetStats()
			assert.Equal(t, int64(1), stats.SnapshotCount)
			assert.Positive(t, stats.SnapshotBytes)
		})
	}
}

func TestCatalog_SnapshotErrors(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	c := New(WithStore(store), WithSnapshotName("snap"))

	err := c.LoadSnapshot(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
	var se *SnapshotError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "load", se.Op)
	assert.Equal(t, "snap", se.Name)

	require.NoError(t, store.Put(ctx, "snap", []byte("garbage")))
	err = c.LoadSnapshot(ctx)
	assert.ErrorIs(t, err, compress.ErrCorrupt)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestCatalog_Closed(t *testing.T) {
	ctx := context.Background()
	c := New()
	require.NoError(t, c.Upsert(ctx, record("a.jpg", 1)))
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.ErrorIs(t, c.Upsert(ctx, record("b.jpg", 1)), ErrClosed)
	_, err := c.Remove(ctx, "a.jpg")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = c.Get("a.jpg")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = c.Query(ctx, catalog.Filter{})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = c.Scan(ctx, t.TempDir())
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, c.SaveSnapshot(ctx), ErrClosed)
	_, err = c.AddTag(ctx, "a.jpg", model.Tag{Name: "x"})
	assert.ErrorIs(t, err, ErrClosed)
}
