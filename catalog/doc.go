// Package catalog maintains an in-memory inverted index over image records
// and answers compound queries against it.
//
// Records are keyed by path. Each record contributes the tokens of its name,
// path, tag names and format; postings map those tokens (and the format and
// tag names themselves) to roaring bitmaps of internal record ids.
//
// A Query combines free-text search with structured predicates:
//
//	recs := ix.Query(catalog.Filter{
//		SearchText: "sun",
//		FileTypes:  []string{"jpg"},
//		SizeRange:  catalog.AtLeast[int64](1024),
//		HasNotes:   catalog.Bool(true),
//		SortBy:     catalog.SortBySize,
//		SortOrder:  catalog.Descending,
//	})
//
// Index is safe for concurrent use.
package catalog
