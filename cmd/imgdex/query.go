package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/hupe1980/imgdex/catalog"
	"github.com/hupe1980/imgdex/metadata"
)

// queryFlags holds the raw "query" command flags.
type queryFlags struct {
	search     string
	allTerms   bool
	tags       []string
	types      []string
	notes      string
	since      string
	until      string
	minSize    string
	maxSize    string
	minQuality float64
	maxQuality float64
	where      []string
	sortBy     string
	order      string
	limit      int
	json       bool
}

func (q *queryFlags) register(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&q.search, "search", "s", "", "free text matched against names, paths and tags")
	flagSet.BoolVar(&q.allTerms, "all-terms", false, "require every search term instead of any")
	flagSet.StringSliceVarP(&q.tags, "tag", "t", nil, "match any of these tags (repeatable, comma-separated)")
	flagSet.StringSliceVar(&q.types, "type", nil, "match any of these file types, e.g. jpg,png")
	flagSet.StringVar(&q.notes, "notes", "", "yes: referenced by a note, no: unreferenced")
	flagSet.StringVar(&q.since, "since", "", "created on or after this date (2006-01-02)")
	flagSet.StringVar(&q.until, "until", "", "created on or before this date (2006-01-02)")
	flagSet.StringVar(&q.minSize, "min-size", "", "minimum file size, e.g. 100KB")
	flagSet.StringVar(&q.maxSize, "max-size", "", "maximum file size, e.g. 5MiB")
	flagSet.Float64Var(&q.minQuality, "min-quality", 0, "minimum analysed quality score")
	flagSet.Float64Var(&q.maxQuality, "max-quality", 1, "maximum analysed quality score")
	flagSet.StringArrayVarP(&q.where, "where", "w", nil, "field condition such as 'iso>=800' or 'make=Canon' (repeatable)")
	flagSet.StringVar(&q.sortBy, "sort", string(catalog.SortByDate), "sort by name, date, size, usage or quality")
	flagSet.StringVar(&q.order, "order", string(catalog.Descending), "asc or desc")
	flagSet.IntVarP(&q.limit, "limit", "n", 0, "print at most n records")
	flagSet.BoolVar(&q.json, "json", false, "print records as JSON")
}

// filter converts the parsed flags into a catalog filter.
func (q *queryFlags) filter(flagSet *pflag.FlagSet) (catalog.Filter, error) {
	f := catalog.Filter{
		SearchText:    q.search,
		MatchAllTerms: q.allTerms,
		SelectedTags:  q.tags,
		FileTypes:     q.types,
	}

	switch q.notes {
	case "":
	case "yes", "true":
		f.HasNotes = catalog.Bool(true)
	case "no", "false":
		f.HasNotes = catalog.Bool(false)
	default:
		return f, fmt.Errorf("--notes: want yes or no, got %q", q.notes)
	}

	var err error
	if f.DateRange.Start, err = parseDay(q.since, false); err != nil {
		return f, fmt.Errorf("--since: %w", err)
	}
	if f.DateRange.End, err = parseDay(q.until, true); err != nil {
		return f, fmt.Errorf("--until: %w", err)
	}

	if q.minSize != "" {
		n, err := humanize.ParseBytes(q.minSize)
		if err != nil {
			return f, fmt.Errorf("--min-size: %w", err)
		}
		f.SizeRange.Min, f.SizeRange.HasMin = int64(n), true
	}
	if q.maxSize != "" {
		n, err := humanize.ParseBytes(q.maxSize)
		if err != nil {
			return f, fmt.Errorf("--max-size: %w", err)
		}
		f.SizeRange.Max, f.SizeRange.HasMax = int64(n), true
	}
	if flagSet.Changed("min-quality") {
		f.QualityRange.Min, f.QualityRange.HasMin = q.minQuality, true
	}
	if flagSet.Changed("max-quality") {
		f.QualityRange.Max, f.QualityRange.HasMax = q.maxQuality, true
	}

	for _, expr := range q.where {
		cond, err := metadata.ParseFilter(expr)
		if err != nil {
			return f, fmt.Errorf("--where: %w", err)
		}
		f.Where = append(f.Where, cond)
	}

	if f.SortBy, err = catalog.ParseSortField(q.sortBy); err != nil {
		return f, err
	}
	if f.SortOrder, err = catalog.ParseSortOrder(q.order); err != nil {
		return f, err
	}
	return f, nil
}

// parseDay parses a 2006-01-02 date in UTC. With endOfDay set it returns the
// last nanosecond of that day.
func parseDay(s string, endOfDay bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
