package catalog

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/imgdex/metadata"
	"github.com/hupe1980/imgdex/model"
)

type entry struct {
	path   string
	rec    model.Record
	doc    metadata.Document
	tokens []string
	format string
	tags   []string
}

func newEntry(rec model.Record) *entry {
	rec = rec.Clone()
	return &entry{
		path:   rec.Path,
		rec:    rec,
		doc:    rec.Document(),
		tokens: recordTokens(&rec),
		format: strings.ToLower(rec.Format),
		tags:   rec.TagNames(),
	}
}

// recordTokens is the union of the tokens of name, path, tag names and
// format, sorted.
func recordTokens(rec *model.Record) []string {
	seen := make(map[string]struct{})
	add := func(s string) {
		for _, t := range Tokenize(s) {
			seen[t] = struct{}{}
		}
	}
	add(rec.Name)
	add(rec.Path)
	for i := range rec.Tags {
		add(rec.Tags[i].Name)
	}
	add(rec.Format)

	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// Index owns the catalog records and their inverted indexes.
//
// Every record gets a dense uint32 id on first insert; postings are roaring
// bitmaps over those ids. Ids are stable across Upsert, so replacing a record
// keeps its position in insertion order.
//
// All mutations take the write lock and readers take the read lock, so a
// reader never observes a partially applied Upsert or Remove.
type Index struct {
	mu sync.RWMutex

	byPath  map[string]uint32
	entries map[uint32]*entry
	nextID  uint32
	live    *roaring.Bitmap

	tokens  postings
	formats postings
	tags    postings

	opts options
}

// New creates an empty Index.
func New(optFns ...Option) *Index {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	ix := &Index{opts: o}
	ix.resetLocked()
	return ix
}

func (ix *Index) resetLocked() {
	ix.byPath = make(map[string]uint32)
	ix.entries = make(map[uint32]*entry)
	ix.nextID = 0
	ix.live = roaring.New()
	ix.tokens = make(postings)
	ix.formats = make(postings)
	ix.tags = make(postings)
}

// IndexAll replaces the whole index with records. The new state is built
// before the lock is taken and swapped in at once. When records repeat a
// path the last one wins.
func (ix *Index) IndexAll(records []model.Record) {
	next := &Index{opts: ix.opts}
	next.resetLocked()
	for i := range records {
		next.upsertLocked(records[i])
	}

	ix.mu.Lock()
	ix.byPath = next.byPath
	ix.entries = next.entries
	ix.nextID = next.nextID
	ix.live = next.live
	ix.tokens = next.tokens
	ix.formats = next.formats
	ix.tags = next.tags
	ix.mu.Unlock()

	ix.opts.logger.Debug("catalog rebuilt", "records", len(next.entries), "tokens", len(next.tokens))
}

// Upsert inserts rec or fully replaces the record stored under rec.Path.
// The stored record is a copy.
func (ix *Index) Upsert(rec model.Record) {
	ix.mu.Lock()
	replaced := ix.upsertLocked(rec)
	ix.mu.Unlock()

	ix.opts.logger.Debug("catalog upsert", "path", rec.Path, "replaced", replaced)
}

func (ix *Index) upsertLocked(rec model.Record) (replaced bool) {
	id, exists := ix.byPath[rec.Path]
	if exists {
		ix.unlinkLocked(id, ix.entries[id])
	} else {
		id = ix.nextID
		ix.nextID++
		ix.byPath[rec.Path] = id
		ix.live.Add(id)
	}

	e := newEntry(rec)
	ix.entries[id] = e
	for _, t := range e.tokens {
		ix.tokens.add(t, id)
	}
	ix.formats.add(e.format, id)
	for _, name := range e.tags {
		ix.tags.add(name, id)
	}
	return exists
}

// unlinkLocked removes the postings contributed by e.
func (ix *Index) unlinkLocked(id uint32, e *entry) {
	for _, t := range e.tokens {
		ix.tokens.remove(t, id)
	}
	ix.formats.remove(e.format, id)
	for _, name := range e.tags {
		ix.tags.remove(name, id)
	}
}

// Update replaces the record stored under path with rec. Unknown paths are
// left alone. If rec.Path differs from path the record moves to the new key.
// It reports whether a record was updated.
func (ix *Index) Update(path string, rec model.Record) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, ok := ix.byPath[path]; !ok {
		return false
	}
	if rec.Path != path {
		ix.removeLocked(path)
	}
	ix.upsertLocked(rec)
	return true
}

// Remove deletes the record stored under path and purges it from every
// posting list. Unknown paths are a no-op. It reports whether a record was
// removed.
func (ix *Index) Remove(path string) bool {
	ix.mu.Lock()
	removed := ix.removeLocked(path)
	ix.mu.Unlock()

	if removed {
		ix.opts.logger.Debug("catalog remove", "path", path)
	}
	return removed
}

func (ix *Index) removeLocked(path string) bool {
	id, ok := ix.byPath[path]
	if !ok {
		return false
	}
	ix.unlinkLocked(id, ix.entries[id])
	delete(ix.entries, id)
	delete(ix.byPath, path)
	ix.live.Remove(id)
	return true
}

// Get returns a copy of the record stored under path.
func (ix *Index) Get(path string) (model.Record, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	id, ok := ix.byPath[path]
	if !ok {
		return model.Record{}, false
	}
	return ix.entries[id].rec.Clone(), true
}

// Size returns the number of records.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Clear removes every record.
func (ix *Index) Clear() {
	ix.mu.Lock()
	ix.resetLocked()
	ix.mu.Unlock()
}

// Records returns copies of all records in insertion order.
func (ix *Index) Records() []model.Record {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make([]model.Record, 0, len(ix.entries))
	it := ix.live.Iterator()
	for it.HasNext() {
		out = append(out, ix.entries[it.Next()].rec.Clone())
	}
	return out
}

// Tokens returns the tokens contributed by the record under path, sorted.
func (ix *Index) Tokens(path string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	id, ok := ix.byPath[path]
	if !ok {
		return nil
	}
	return slices.Clone(ix.entries[id].tokens)
}

// Lookup returns the paths whose records contain token exactly, in
// insertion order.
func (ix *Index) Lookup(token string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	bm, ok := ix.tokens[strings.ToLower(token)]
	if !ok {
		return nil
	}
	return ix.pathsLocked(bm)
}

// TokenCount returns the number of distinct tokens in the index.
func (ix *Index) TokenCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.tokens)
}

// TagCounts returns how many records carry each tag name.
func (ix *Index) TagCounts() map[string]int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make(map[string]int, len(ix.tags))
	for name, bm := range ix.tags {
		out[name] = int(bm.GetCardinality())
	}
	return out
}

func (ix *Index) pathsLocked(bm *roaring.Bitmap) []string {
	out := make([]string, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, ix.entries[it.Next()].path)
	}
	return out
}

// Logger returns the logger the index was configured with.
func (ix *Index) Logger() *slog.Logger { return ix.opts.logger }
