package scan

import (
	"bytes"
	"context"
	"net/url"
	"path"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/imgdex/internal/mmap"
)

// referencePatterns returns the byte strings whose presence in a note marks
// a reference to the image at rel.
func referencePatterns(rel string) [][]byte {
	patterns := [][]byte{
		[]byte(rel),
		[]byte("![[" + path.Base(rel) + "]]"),
		[]byte("![](" + rel + ")"),
	}
	if escaped := (&url.URL{Path: rel}).EscapedPath(); escaped != rel {
		patterns = append(patterns, []byte(escaped))
	}
	return patterns
}

// noteRefs maps image paths to the sorted notes that reference them.
// Unreadable notes are logged and ignored.
func (s *Scanner) noteRefs(ctx context.Context, notes []string, images []candidate) (map[string][]string, error) {
	refs := make(map[string][]string)
	if len(notes) == 0 || len(images) == 0 {
		return refs, nil
	}

	patterns := make([][][]byte, len(images))
	for i, c := range images {
		patterns[i] = referencePatterns(c.rel)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.concurrency)
	for _, note := range notes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := mmap.Open(s.abs(note))
			if err != nil {
				s.opts.logger.Warn("skipping note", "path", note, "error", err)
				return nil
			}
			defer f.Close()
			content := f.Bytes()

			for i, c := range images {
				if !slices.ContainsFunc(patterns[i], func(p []byte) bool { return bytes.Contains(content, p) }) {
					continue
				}
				mu.Lock()
				refs[c.rel] = append(refs[c.rel], note)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for k := range refs {
		slices.Sort(refs[k])
	}
	return refs, nil
}
