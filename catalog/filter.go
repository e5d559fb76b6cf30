package catalog

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/imgdex/metadata"
)

// SortField selects the sort key of a query.
type SortField string

const (
	// SortNone keeps insertion order.
	SortNone SortField = ""
	// SortByName orders by file name using locale-aware collation.
	SortByName SortField = "name"
	// SortByDate orders by creation time.
	SortByDate SortField = "date"
	// SortBySize orders by file size.
	SortBySize SortField = "size"
	// SortByUsage orders by the number of referencing notes.
	SortByUsage SortField = "usage"
	// SortByQuality orders by analyzed quality score; unanalyzed records
	// count as 0.
	SortByQuality SortField = "quality"
)

// ParseSortField parses a sort key name. The empty string is SortNone.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortNone, SortByName, SortByDate, SortBySize, SortByUsage, SortByQuality:
		return f, nil
	default:
		return SortNone, fmt.Errorf("catalog: unknown sort field %q", s)
	}
}

// SortOrder is the sort direction.
type SortOrder string

const (
	// Ascending puts the smallest key first.
	Ascending SortOrder = "asc"
	// Descending reverses Ascending.
	Descending SortOrder = "desc"
)

// ParseSortOrder parses "asc" or "desc". The empty string is Ascending.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("catalog: unknown sort order %q", s)
	}
}

// Range is an inclusive interval. A bound is only enforced when its Has flag
// is set, so the zero Range matches everything.
type Range[T cmp.Ordered] struct {
	Min, Max       T
	HasMin, HasMax bool
}

// Between returns the range [lo, hi].
func Between[T cmp.Ordered](lo, hi T) Range[T] {
	return Range[T]{Min: lo, Max: hi, HasMin: true, HasMax: true}
}

// AtLeast returns the range [lo, +inf).
func AtLeast[T cmp.Ordered](lo T) Range[T] { return Range[T]{Min: lo, HasMin: true} }

// AtMost returns the range (-inf, hi].
func AtMost[T cmp.Ordered](hi T) Range[T] { return Range[T]{Max: hi, HasMax: true} }

// IsSet reports whether either bound is enforced.
func (r Range[T]) IsSet() bool { return r.HasMin || r.HasMax }

// Contains reports whether v lies within the range.
func (r Range[T]) Contains(v T) bool {
	if r.HasMin && v < r.Min {
		return false
	}
	if r.HasMax && v > r.Max {
		return false
	}
	return true
}

// TimeRange is an inclusive interval of timestamps. A zero bound is open.
type TimeRange struct {
	Start, End time.Time
}

// IsSet reports whether either bound is enforced.
func (r TimeRange) IsSet() bool { return !r.Start.IsZero() || !r.End.IsZero() }

// Contains reports whether t lies within the range.
func (r TimeRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// Filter is a compound catalog query. Every set field narrows the result
// (logical AND); the zero Filter returns every record in insertion order.
type Filter struct {
	// SearchText is split into whitespace-separated lowercase terms. A term
	// hits every record owning a token that equals or contains it. Records
	// hit by any term match.
	SearchText string
	// MatchAllTerms requires every term of SearchText to hit the record.
	MatchAllTerms bool

	// SelectedTags matches records carrying at least one of the names.
	SelectedTags []string
	// FileTypes matches records whose lowercased format is in the set.
	FileTypes []string
	// HasNotes, when non-nil, requires related notes to be present (true)
	// or absent (false).
	HasNotes *bool

	DateRange    TimeRange
	SizeRange    Range[int64]
	QualityRange Range[float64]

	// Where holds extra predicates over model.Record.Document fields.
	Where []metadata.Filter

	SortBy    SortField
	SortOrder SortOrder
}

// DefaultFilter returns a filter that matches everything, newest first.
func DefaultFilter() Filter {
	return Filter{SortBy: SortByDate, SortOrder: Descending}
}

// Bool returns a pointer to b, for Filter.HasNotes.
func Bool(b bool) *bool { return &b }
