package scan

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/imgdex/exif"
	"github.com/hupe1980/imgdex/model"
	"github.com/hupe1980/imgdex/testutil"
)

func writeFile(t *testing.T, root, rel string, data []byte) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, data, 0o644))
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

// vault lays out a small notes vault and returns its root.
func vault(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	tiff := testutil.NewTIFF(binary.LittleEndian).ASCII(uint16(exif.TagMake), "TestCam")
	writeFile(t, root, "photos/sunset.jpg", testutil.JPEG(testutil.ExifSegment(tiff.Bytes())))
	writeFile(t, root, "photos/My Pic.png", pngBytes(t, 3, 2))
	writeFile(t, root, "readme.txt", []byte("not an image"))
	writeFile(t, root, ".obsidian/hidden.png", pngBytes(t, 1, 1))
	writeFile(t, root, "sub/node_modules/dep.png", pngBytes(t, 1, 1))
	writeFile(t, root, "notes/trip.md", []byte("Look ![[sunset.jpg]]"))
	writeFile(t, root, "notes/other.md", []byte("see photos/My%20Pic.png"))
	writeFile(t, root, "notes/plain.md", []byte("photos/sunset.jpg"))
	writeFile(t, root, "notes/none.md", []byte("nothing here"))
	return root
}

func paths(recs []model.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Path
	}
	return out
}

func TestScan(t *testing.T) {
	root := vault(t)

	res, err := New(root, WithSizeRange(0, 0), WithRateLimit(1000)).Scan(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{"photos/My Pic.png", "photos/sunset.jpg"}, paths(res.Records))
	assert.Empty(t, res.Failures)
	assert.Equal(t, 4, res.Notes)

	pic := res.Records[0]
	assert.Equal(t, "My Pic.png", pic.Name)
	assert.Equal(t, "png", pic.Format)
	assert.Equal(t, model.Dimensions{Width: 3, Height: 2}, pic.Dimensions)
	assert.Nil(t, pic.Exif)
	assert.Equal(t, []string{"notes/other.md"}, pic.RelatedNotes)
	assert.False(t, pic.Modified.IsZero())
	assert.False(t, pic.Created.IsZero())

	sunset := res.Records[1]
	assert.Equal(t, "jpg", sunset.Format)
	assert.Equal(t, model.Dimensions{}, sunset.Dimensions, "header without frame has no dimensions")
	require.NotNil(t, sunset.Exif)
	v, ok := sunset.Exif.Get(exif.TagMake)
	require.True(t, ok)
	assert.Equal(t, "TestCam", v.String())
	assert.Equal(t, []string{"notes/plain.md", "notes/trip.md"}, sunset.RelatedNotes)
}

func TestScan_SizeAndFormatFilters(t *testing.T) {
	root := vault(t)
	writeFile(t, root, "big.png", append(pngBytes(t, 10, 10), make([]byte, 2048)...))

	res, err := New(root).Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"big.png"}, paths(res.Records), "default minimum is 1 KiB")

	res, err = New(root, WithSizeRange(0, 0), WithFormats(".JPG")).Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"photos/sunset.jpg"}, paths(res.Records))

	res, err = New(root, WithSizeRange(0, 0), WithExcludedFolders("photos")).Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{".obsidian/hidden.png", "big.png", "sub/node_modules/dep.png"}, paths(res.Records))
}

func TestScan_ExifDisabled(t *testing.T) {
	res, err := New(vault(t), WithSizeRange(0, 0), WithExif(false)).Scan(context.Background())
	require.NoError(t, err)
	for _, r := range res.Records {
		assert.Nil(t, r.Exif, r.Path)
	}
}

func TestScan_FailedFileIsSkipped(t *testing.T) {
	root := vault(t)
	require.NoError(t, os.Symlink(filepath.Join(root, "missing.jpg"), filepath.Join(root, "broken.jpg")))

	res, err := New(root, WithSizeRange(0, 0), WithConcurrency(1)).Scan(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "broken.jpg", res.Failures[0].Path)
	assert.ErrorIs(t, res.Failures[0].Err, os.ErrNotExist)
}

func TestScan_Errors(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing")).Scan(context.Background())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(vault(t)).Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRescan(t *testing.T) {
	root := vault(t)
	s := New(root)

	rec, err := s.Rescan(context.Background(), "photos/sunset.jpg")
	require.NoError(t, err)
	assert.Equal(t, "sunset.jpg", rec.Name)
	assert.NotNil(t, rec.Exif)
	assert.Equal(t, []string{"notes/plain.md", "notes/trip.md"}, rec.RelatedNotes)

	for _, rel := range []string{"readme.txt", ".obsidian/hidden.png", "../escape.png"} {
		_, err := s.Rescan(context.Background(), rel)
		assert.ErrorIs(t, err, ErrUnsupported, rel)
	}

	_, err = s.Rescan(context.Background(), "photos/gone.png")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExcluded(t *testing.T) {
	s := New(".", WithExcludedFolders(".trash", "archive/old/"))

	assert.True(t, s.excluded(".trash"))
	assert.True(t, s.excluded("a/.trash/b"))
	assert.True(t, s.excluded("archive/old"))
	assert.True(t, s.excluded("x/archive/old/y"))
	assert.False(t, s.excluded("archive"))
	assert.False(t, s.excluded(".trashcan"))
	assert.False(t, s.excluded("."))
}

func TestReferencePatterns(t *testing.T) {
	assert.Equal(t, [][]byte{
		[]byte("a/b c.png"),
		[]byte("![[b c.png]]"),
		[]byte("![](a/b c.png)"),
		[]byte("a/b%20c.png"),
	}, referencePatterns("a/b c.png"))

	assert.Len(t, referencePatterns("a/b.png"), 3)
}
