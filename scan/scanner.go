// Package scan walks a directory tree and builds catalog records for the
// image files it finds.
//
// Each record carries the file's size, timestamps, pixel dimensions (read
// from the image header only), EXIF attributes for JPEG files, and the
// Markdown notes under the same root that reference the image. A file that
// cannot be read is logged and skipped; it never aborts the scan.
package scan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/webp" // register WEBP
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/imgdex/exif"
	"github.com/hupe1980/imgdex/internal/mmap"
	"github.com/hupe1980/imgdex/model"
)

var (
	// ErrUnsupported is returned by Rescan for files that are not cataloged.
	ErrUnsupported = errors.New("scan: unsupported file")
)

// Failure is a file the scanner skipped.
type Failure struct {
	Path string
	Err  error
}

// Result is the outcome of a scan.
type Result struct {
	// Records are ordered by path.
	Records  []model.Record
	Failures []Failure
	Notes    int
	Duration time.Duration
}

// Scanner catalogs the images below a root directory.
type Scanner struct {
	root    string
	opts    options
	limiter *rate.Limiter
}

// New returns a scanner for root.
func New(root string, optFns ...Option) *Scanner {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Scanner{root: root, opts: opts}
	if opts.filesPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.filesPerSecond), max(1, int(opts.filesPerSecond)))
	}
	return s
}

// Root returns the scanned directory.
func (s *Scanner) Root() string { return s.root }

type candidate struct {
	rel string
	fi  fs.FileInfo
}

// Scan walks the root and returns a record for every supported image.
// It fails only when the root cannot be walked or ctx is done.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	start := time.Now()

	images, notes, failures, err := s.walk(ctx, true)
	if err != nil {
		return nil, err
	}

	refs, err := s.noteRefs(ctx, notes, images)
	if err != nil {
		return nil, err
	}

	recs := make([]model.Record, len(images))
	errs := make([]error, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.concurrency)
	for i, c := range images {
		g.Go(func() error {
			if s.limiter != nil {
				if err := s.limiter.Wait(gctx); err != nil {
					return err
				}
			}
			recs[i], errs[i] = s.read(c.rel, c.fi)
			recs[i].RelatedNotes = refs[c.rel]
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Failures: failures, Notes: len(notes)}
	res.Records = make([]model.Record, 0, len(images))
	for i, c := range images {
		if errs[i] != nil {
			s.opts.logger.Warn("skipping image", "path", c.rel, "error", errs[i])
			res.Failures = append(res.Failures, Failure{Path: c.rel, Err: errs[i]})
			continue
		}
		res.Records = append(res.Records, recs[i])
	}
	res.Duration = time.Since(start)

	s.opts.logger.Info("scan completed",
		"root", s.root,
		"images", len(res.Records),
		"notes", res.Notes,
		"failed", len(res.Failures),
		"duration", res.Duration,
	)
	return res, nil
}

// Rescan rebuilds the record of one file, given by its slash path relative
// to the root. Size bounds are not applied.
func (s *Scanner) Rescan(ctx context.Context, rel string) (model.Record, error) {
	rel = path.Clean(filepath.ToSlash(rel))
	if !fs.ValidPath(rel) || !s.supported(rel) || s.excluded(path.Dir(rel)) {
		return model.Record{}, fmt.Errorf("%w: %s", ErrUnsupported, rel)
	}

	fi, err := os.Stat(s.abs(rel))
	if err != nil {
		return model.Record{}, err
	}
	if !fi.Mode().IsRegular() {
		return model.Record{}, fmt.Errorf("%w: %s", ErrUnsupported, rel)
	}

	rec, err := s.read(rel, fi)
	if err != nil {
		return model.Record{}, err
	}

	_, notes, _, err := s.walk(ctx, false)
	if err != nil {
		return model.Record{}, err
	}
	refs, err := s.noteRefs(ctx, notes, []candidate{{rel: rel, fi: fi}})
	if err != nil {
		return model.Record{}, err
	}
	rec.RelatedNotes = refs[rel]
	return rec, nil
}

func (s *Scanner) abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

func (s *Scanner) supported(rel string) bool {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(rel), "."))
	return ext != "" && s.opts.formats[ext]
}

// excluded reports whether the slash directory rel is, or lies below, an
// excluded folder.
func (s *Scanner) excluded(rel string) bool {
	if rel == "." || rel == "" {
		return false
	}
	padded := "/" + rel + "/"
	for _, f := range s.opts.excluded {
		f = strings.Trim(f, "/")
		if f != "" && strings.Contains(padded, "/"+f+"/") {
			return true
		}
	}
	return false
}

func (s *Scanner) sizeOK(size int64) bool {
	return size >= s.opts.minSize && (s.opts.maxSize <= 0 || size <= s.opts.maxSize)
}

// walk collects image candidates (when images is set) and Markdown notes.
func (s *Scanner) walk(ctx context.Context, images bool) ([]candidate, []string, []Failure, error) {
	var (
		cands    []candidate
		notes    []string
		failures []Failure
	)

	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, relErr := filepath.Rel(s.root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if err != nil {
			if rel == "." {
				return err
			}
			failures = append(failures, Failure{Path: rel, Err: err})
			s.opts.logger.Warn("skipping path", "path", rel, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if s.excluded(rel) {
				return fs.SkipDir
			}
			return nil
		}

		if strings.EqualFold(path.Ext(rel), ".md") {
			notes = append(notes, rel)
			return nil
		}
		if !images || !s.supported(rel) {
			return nil
		}

		// Follows symlinks.
		fi, statErr := os.Stat(p)
		if statErr != nil {
			failures = append(failures, Failure{Path: rel, Err: statErr})
			s.opts.logger.Warn("skipping image", "path", rel, "error", statErr)
			return nil
		}
		if !fi.Mode().IsRegular() || !s.sizeOK(fi.Size()) {
			return nil
		}
		cands = append(cands, candidate{rel: rel, fi: fi})
		return nil
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("scan %s: %w", s.root, err)
	}
	return cands, notes, failures, nil
}

// read builds the record for one file from its contents.
func (s *Scanner) read(rel string, fi fs.FileInfo) (model.Record, error) {
	full := s.abs(rel)

	f, err := mmap.Open(full)
	if err != nil {
		return model.Record{}, err
	}
	defer f.Close()
	data := f.Bytes()

	ext := strings.TrimPrefix(path.Ext(rel), ".")
	rec := model.Record{
		Path:     rel,
		Name:     path.Base(rel),
		Size:     fi.Size(),
		Format:   strings.ToLower(ext),
		Created:  created(full, fi).UTC(),
		Modified: fi.ModTime().UTC(),
	}

	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		rec.Dimensions = model.Dimensions{Width: cfg.Width, Height: cfg.Height}
	} else {
		s.opts.logger.Debug("dimensions unavailable", "path", rel, "error", err)
	}

	if s.opts.exif {
		if attrs, ok := exif.DecodeFile(data, ext); ok {
			rec.Exif = attrs
		}
	}
	return rec, nil
}
