package catalog

import (
	"testing"
	"time"

	"github.com/hupe1980/imgdex/metadata"
	"github.com/hupe1980/imgdex/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func paths(recs []model.Record) []string {
	out := make([]string, len(recs))
	for i := range recs {
		out[i] = recs[i].Path
	}
	return out
}

func TestQuery_SearchSubstring(t *testing.T) {
	ix := New()
	ix.IndexAll([]model.Record{
		{Path: "sunset.jpg", Name: "sunset.jpg", Format: "jpg"},
		{Path: "sunrise.png", Name: "sunrise.png", Format: "png"},
	})

	assert.Equal(t, []string{"sunset.jpg", "sunrise.png"}, paths(ix.Query(Filter{SearchText: "sun"})))
	assert.Equal(t, []string{"sunset.jpg"}, paths(ix.Query(Filter{SearchText: "sunset"})))
	assert.Equal(t, []string{"sunset.jpg"}, paths(ix.Query(Filter{SearchText: "  SUNSET "})))
	assert.Empty(t, ix.Query(Filter{SearchText: "moon"}))
}

func TestQuery_SearchTermsCombine(t *testing.T) {
	ix := New()
	ix.IndexAll([]model.Record{
		rec("beach.jpg", "sunset"),
		rec("city.jpg", "night"),
		rec("forest.jpg"),
	})

	anyTerm := ix.Query(Filter{SearchText: "beach night"})
	assert.Equal(t, []string{"beach.jpg", "city.jpg"}, paths(anyTerm))

	all := ix.Query(Filter{SearchText: "beach night", MatchAllTerms: true})
	assert.Empty(t, all)

	all = ix.Query(Filter{SearchText: "beach sun", MatchAllTerms: true})
	assert.Equal(t, []string{"beach.jpg"}, paths(all))
}

func TestQuery_WhitespaceSearchIsUnset(t *testing.T) {
	ix := New()
	ix.IndexAll([]model.Record{rec("a.jpg"), rec("b.jpg")})
	assert.Len(t, ix.Query(Filter{SearchText: " \t "}), 2)
}

func TestQuery_TagsAndFileTypes(t *testing.T) {
	ix := New()
	png := rec("b.png", "cat")
	png.Format = "PNG"
	ix.IndexAll([]model.Record{rec("a.jpg", "dog"), png, rec("c.jpg", "bird")})

	got := ix.Query(Filter{SelectedTags: []string{"dog", "cat"}})
	assert.Equal(t, []string{"a.jpg", "b.png"}, paths(got))

	got = ix.Query(Filter{FileTypes: []string{"png"}})
	assert.Equal(t, []string{"b.png"}, paths(got))

	got = ix.Query(Filter{SelectedTags: []string{"dog", "cat"}, FileTypes: []string{".JPG"}})
	assert.Equal(t, []string{"a.jpg"}, paths(got))

	assert.Empty(t, ix.Query(Filter{SelectedTags: []string{"unknown"}}))
}

func TestQuery_HasNotes(t *testing.T) {
	ix := New()
	noted := rec("noted.jpg")
	noted.RelatedNotes = []string{"trip.md"}
	ix.IndexAll([]model.Record{rec("bare.jpg"), noted})

	assert.Equal(t, []string{"noted.jpg"}, paths(ix.Query(Filter{HasNotes: Bool(true)})))
	assert.Equal(t, []string{"bare.jpg"}, paths(ix.Query(Filter{HasNotes: Bool(false)})))
}

func TestQuery_Ranges(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

	mk := func(path string, size int64, created time.Time, quality float64) model.Record {
		r := rec(path)
		r.Size = size
		r.Created = created
		if quality > 0 {
			r.Analysis = &model.Analysis{Quality: &model.Quality{Score: quality}}
		}
		return r
	}
	ix := New()
	ix.IndexAll([]model.Record{
		mk("a.jpg", 100, day(1), 0.9),
		mk("b.jpg", 200, day(2), 0.5),
		mk("c.jpg", 300, day(3), 0),
	})

	got := ix.Query(Filter{SizeRange: Between[int64](100, 200)})
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, paths(got), "bounds are inclusive")

	got = ix.Query(Filter{SizeRange: AtLeast[int64](250)})
	assert.Equal(t, []string{"c.jpg"}, paths(got))

	got = ix.Query(Filter{DateRange: TimeRange{Start: day(2), End: day(3)}})
	assert.Equal(t, []string{"b.jpg", "c.jpg"}, paths(got))

	got = ix.Query(Filter{DateRange: TimeRange{End: day(1)}})
	assert.Equal(t, []string{"a.jpg"}, paths(got))

	got = ix.Query(Filter{QualityRange: AtMost(0.5)})
	assert.Equal(t, []string{"b.jpg", "c.jpg"}, paths(got), "missing quality counts as 0")
}

func TestQuery_Where(t *testing.T) {
	ix := New()
	small := rec("small.jpg")
	small.Dimensions = model.Dimensions{Width: 320, Height: 240}
	large := rec("large.jpg")
	large.Dimensions = model.Dimensions{Width: 4000, Height: 3000}
	ix.IndexAll([]model.Record{small, large})

	f, err := metadata.ParseFilter("width>=1000")
	require.NoError(t, err)

	got := ix.Query(Filter{Where: []metadata.Filter{f}})
	assert.Equal(t, []string{"large.jpg"}, paths(got))
}

func TestQuery_SortBySize(t *testing.T) {
	ix := New()
	for _, s := range []struct {
		path string
		size int64
	}{{"ten.jpg", 10}, {"five.jpg", 5}, {"twenty.jpg", 20}} {
		r := rec(s.path)
		r.Size = s.size
		ix.Upsert(r)
	}

	sizes := func(recs []model.Record) []int64 {
		out := make([]int64, len(recs))
		for i := range recs {
			out[i] = recs[i].Size
		}
		return out
	}

	assert.Equal(t, []int64{5, 10, 20}, sizes(ix.Query(Filter{SortBy: SortBySize, SortOrder: Ascending})))
	assert.Equal(t, []int64{20, 10, 5}, sizes(ix.Query(Filter{SortBy: SortBySize, SortOrder: Descending})))
	assert.Equal(t, []int64{10, 5, 20}, sizes(ix.Query(Filter{})), "unsorted keeps insertion order")
}

func TestQuery_SortIsStable(t *testing.T) {
	ix := New()
	for _, p := range []string{"c.jpg", "a.jpg", "b.jpg"} {
		r := rec(p)
		r.Size = 1
		ix.Upsert(r)
	}
	got := ix.Query(Filter{SortBy: SortBySize, SortOrder: Descending})
	assert.Equal(t, []string{"c.jpg", "a.jpg", "b.jpg"}, paths(got))
}

func TestQuery_SortByNameCollates(t *testing.T) {
	ix := New(WithLanguage(language.German))
	for _, name := range []string{"zebra.jpg", "Äpfel.jpg", "apple.jpg", "Birne.jpg"} {
		ix.Upsert(model.Record{Path: name, Name: name})
	}

	got := ix.Query(Filter{SortBy: SortByName})
	assert.Equal(t, []string{"Äpfel.jpg", "apple.jpg", "Birne.jpg", "zebra.jpg"}, paths(got))
}

func TestQuery_SortByUsageAndQuality(t *testing.T) {
	ix := New()
	a := rec("a.jpg")
	a.RelatedNotes = []string{"1.md", "2.md"}
	b := rec("b.jpg")
	b.Analysis = &model.Analysis{Quality: &model.Quality{Score: 0.9}}
	c := rec("c.jpg")
	c.RelatedNotes = []string{"1.md"}
	c.Analysis = &model.Analysis{Quality: &model.Quality{Score: 0.4}}
	ix.IndexAll([]model.Record{a, b, c})

	assert.Equal(t, []string{"a.jpg", "c.jpg", "b.jpg"}, paths(ix.Query(Filter{SortBy: SortByUsage, SortOrder: Descending})))
	assert.Equal(t, []string{"a.jpg", "c.jpg", "b.jpg"}, paths(ix.Query(Filter{SortBy: SortByQuality})))
}

func TestQuery_DefaultFilterNewestFirst(t *testing.T) {
	ix := New()
	for i, p := range []string{"old.jpg", "new.jpg", "mid.jpg"} {
		r := rec(p)
		r.Created = time.Unix(int64([]int{1, 3, 2}[i]), 0)
		ix.Upsert(r)
	}
	assert.Equal(t, []string{"new.jpg", "mid.jpg", "old.jpg"}, paths(ix.Query(DefaultFilter())))
	assert.Equal(t, 3, ix.Count(DefaultFilter()))
}

func TestParseSort(t *testing.T) {
	f, err := ParseSortField("Quality")
	require.NoError(t, err)
	assert.Equal(t, SortByQuality, f)

	_, err = ParseSortField("colour")
	assert.Error(t, err)

	o, err := ParseSortOrder("DESC")
	require.NoError(t, err)
	assert.Equal(t, Descending, o)

	o, err = ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, Ascending, o)

	_, err = ParseSortOrder("up")
	assert.Error(t, err)
}
