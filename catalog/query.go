package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/imgdex/metadata"
	"github.com/hupe1980/imgdex/model"
	"golang.org/x/text/collate"
)

// Query evaluates f against the index and returns copies of the matching
// records in sort order. A filter with no predicates returns every record.
func (ix *Index) Query(f Filter) []model.Record {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	cand := ix.candidatesLocked(&f)
	if cand.IsEmpty() {
		return []model.Record{}
	}

	var where *metadata.FilterSet
	if len(f.Where) > 0 {
		where = metadata.NewFilterSet(f.Where...)
	}

	hits := make([]*entry, 0, cand.GetCardinality())
	it := cand.Iterator()
	for it.HasNext() {
		e := ix.entries[it.Next()]
		if matchScalars(&f, e) && where.Matches(e.doc) {
			hits = append(hits, e)
		}
	}

	if f.SortBy != SortNone {
		cmpFn := ix.comparator(f.SortBy)
		if f.SortOrder == Descending {
			asc := cmpFn
			cmpFn = func(a, b *entry) int { return -asc(a, b) }
		}
		slices.SortStableFunc(hits, cmpFn)
	}

	out := make([]model.Record, len(hits))
	for i, e := range hits {
		out[i] = e.rec.Clone()
	}
	return out
}

// Count returns the number of records f matches.
func (ix *Index) Count(f Filter) int {
	f.SortBy = SortNone
	return len(ix.Query(f))
}

// candidatesLocked narrows the live set with the bitmap-backed predicates.
func (ix *Index) candidatesLocked(f *Filter) *roaring.Bitmap {
	cand := ix.live.Clone()

	if terms := queryTerms(f.SearchText); len(terms) > 0 {
		cand.And(ix.searchLocked(terms, f.MatchAllTerms))
	}
	if len(f.SelectedTags) > 0 {
		cand.And(ix.tags.union(f.SelectedTags))
	}
	if len(f.FileTypes) > 0 {
		types := make([]string, len(f.FileTypes))
		for i, t := range f.FileTypes {
			types[i] = strings.ToLower(strings.TrimPrefix(t, "."))
		}
		cand.And(ix.formats.union(types))
	}
	return cand
}

// searchLocked resolves every term against the token table. A term hits a
// token when it equals it or is a substring of it.
func (ix *Index) searchLocked(terms []string, all bool) *roaring.Bitmap {
	var acc *roaring.Bitmap
	for _, term := range terms {
		hit := roaring.New()
		for tok, bm := range ix.tokens {
			if strings.Contains(tok, term) {
				hit.Or(bm)
			}
		}
		switch {
		case acc == nil:
			acc = hit
		case all:
			acc.And(hit)
		default:
			acc.Or(hit)
		}
	}
	return acc
}

func matchScalars(f *Filter, e *entry) bool {
	rec := &e.rec
	if f.HasNotes != nil && rec.HasNotes() != *f.HasNotes {
		return false
	}
	if f.DateRange.IsSet() && !f.DateRange.Contains(rec.Created) {
		return false
	}
	if f.SizeRange.IsSet() && !f.SizeRange.Contains(rec.Size) {
		return false
	}
	if f.QualityRange.IsSet() && !f.QualityRange.Contains(rec.QualityScore()) {
		return false
	}
	return true
}

// comparator returns the ascending comparison for field. Name comparison
// uses a collator for the configured language; a collator is not safe for
// concurrent use, so one is built per call.
func (ix *Index) comparator(field SortField) func(a, b *entry) int {
	switch field {
	case SortByName:
		col := collate.New(ix.opts.language, collate.IgnoreCase)
		return func(a, b *entry) int { return col.CompareString(a.rec.Name, b.rec.Name) }
	case SortByDate:
		return func(a, b *entry) int { return a.rec.Created.Compare(b.rec.Created) }
	case SortBySize:
		return func(a, b *entry) int { return cmp.Compare(a.rec.Size, b.rec.Size) }
	case SortByUsage:
		return func(a, b *entry) int { return cmp.Compare(a.rec.UsageCount(), b.rec.UsageCount()) }
	case SortByQuality:
		return func(a, b *entry) int { return cmp.Compare(a.rec.QualityScore(), b.rec.QualityScore()) }
	default:
		return func(*entry, *entry) int { return 0 }
	}
}
