package matching

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/titlematch/internal/catalog"
	"github.com/lehigh-university-libraries/titlematch/internal/config"
)

func testBooks() []catalog.BookRow {
	return []catalog.BookRow{
		{ID: 1, Title: "Harry Potter and the Philosopher's Stone", Author: "J.K. Rowling", Popularity: 100, SeriesID: 10, BookNumber: "1", Pages: 223},
		{ID: 2, Title: "Harry Potter and the Chamber of Secrets", Author: "J.K. Rowling", Popularity: 80, SeriesID: 10, BookNumber: "2", Pages: 251},
		{ID: 3, Title: "Harry Potter Boxed Set", Author: "J.K. Rowling", Popularity: 5, SeriesID: 10, BookNumber: "1-7"},
		{ID: 4, Title: "The Hobbit", Author: "J.R.R. Tolkien", Popularity: 90},
		{ID: 5, Title: "Stand By Me", Author: "Stephen King", Popularity: 30},
		{ID: 6, Title: "A Very Long Title About Many Things In The World", Author: "Some Writer", Popularity: 1},
	}
}

func testSeries() []catalog.SeriesRow {
	return []catalog.SeriesRow{
		{ID: 10, Title: "Harry Potter", Author: "J.K. Rowling", Popularity: 120},
		{ID: 20, Title: "Middle-earth", Author: "J.R.R. Tolkien", Popularity: 40},
	}
}

func newTestMatcher(t *testing.T, books []catalog.BookRow, series []catalog.SeriesRow, cfg config.Matching) *Matcher {
	t.Helper()
	idx, err := catalog.NewIndex(books, series)
	require.NoError(t, err)
	m, err := New(idx, cfg)
	require.NoError(t, err)
	return m
}

func TestNewRejectsBadConfig(t *testing.T) {
	idx, err := catalog.NewIndex(testBooks(), testSeries())
	require.NoError(t, err)

	cfg := config.DefaultMatching()
	cfg.SearchMode = "sideways"
	_, err = New(idx, cfg)
	assert.Error(t, err)

	_, err = New(nil, config.DefaultMatching())
	assert.Error(t, err)
}

func TestResolveExactBook(t *testing.T) {
	m := newTestMatcher(t, testBooks(), testSeries(), config.DefaultMatching())

	match := m.Resolve("Harry Potter and the Philosopher's Stone")
	require.NotNil(t, match.Entry)
	assert.Equal(t, int64(1), match.Entry.ID)
	assert.Equal(t, 100.0, match.RawScore)
	assert.False(t, match.IsSeries)
	assert.False(t, match.FromTruncatedFallback)
	assert.True(t, match.Valid(m.MinRatio()))

	require.NotNil(t, match.Info)
	pages, ok := match.Info.Number("pages")
	require.True(t, ok)
	assert.Equal(t, 223.0, pages)
}

func TestResolveSeriesWithAuthor(t *testing.T) {
	m := newTestMatcher(t, testBooks(), testSeries(), config.DefaultMatching())

	match := m.Resolve("harry potter by jk rowling")
	require.NotNil(t, match.Entry)
	assert.True(t, match.IsSeries)
	assert.Equal(t, int64(10), match.Entry.ID)
	assert.Equal(t, 100.0+SeriesBonus, match.Score())

	require.NotNil(t, match.Display)
	assert.Equal(t, int64(1), match.Display.ID, "series shown as its first book")
	require.NotNil(t, match.Info)
	assert.Equal(t, int64(1), match.Info.BookID)

	res := match.Result(m.MinRatio())
	assert.Equal(t, int64(1), res.ID)
	assert.Equal(t, int64(10), res.SeriesID)
	assert.Equal(t, "Harry Potter and the Philosopher's Stone", res.Title)
	assert.True(t, res.Valid)
}

func TestResolveSeriesBeatsEqualBook(t *testing.T) {
	books := []catalog.BookRow{
		{ID: 1, Title: "Mistborn", Author: "Brandon Sanderson", Popularity: 500},
	}
	series := []catalog.SeriesRow{
		{ID: 10, Title: "Mistborn", Author: "Brandon Sanderson", Popularity: 1},
	}
	m := newTestMatcher(t, books, series, config.DefaultMatching())

	match := m.Resolve("Mistborn")
	require.NotNil(t, match.Entry)
	assert.Equal(t, int64(10), match.Entry.ID)
	assert.True(t, match.IsSeries)
	assert.Equal(t, 100.0, match.RawScore)
	assert.Equal(t, 105.0, match.Score())
}

func TestResolveAuthorFilter(t *testing.T) {
	m := newTestMatcher(t, testBooks(), testSeries(), config.DefaultMatching())

	match := m.Resolve("The Hobbit by Tolkien")
	require.NotNil(t, match.Entry)
	assert.Equal(t, int64(4), match.Entry.ID)
	assert.True(t, match.Valid(m.MinRatio()))
}

func TestResolveAuthorFallsThrough(t *testing.T) {
	m := newTestMatcher(t, testBooks(), testSeries(), config.DefaultMatching())

	// "by me" is part of the title, and no author resembles "me".
	match := m.Resolve("Stand by Me")
	require.NotNil(t, match.Entry)
	assert.Equal(t, int64(5), match.Entry.ID)
	assert.Equal(t, 100.0, match.RawScore)
	assert.True(t, match.Valid(m.MinRatio()))
}

func TestResolveTruncatedFallback(t *testing.T) {
	m := newTestMatcher(t, testBooks(), testSeries(), config.DefaultMatching())

	match := m.Resolve("very long title about")
	require.NotNil(t, match.Entry)
	assert.Equal(t, int64(6), match.Entry.ID)
	assert.True(t, match.FromTruncatedFallback)
	assert.Equal(t, 100.0, match.RawScore)
	assert.Equal(t, 100.0-TruncatedMalus, match.Score())
	assert.True(t, match.Valid(m.MinRatio()))
}

func TestResolveInvalid(t *testing.T) {
	m := newTestMatcher(t, testBooks(), testSeries(), config.DefaultMatching())

	tests := []struct {
		name  string
		query string
		entry bool
	}{
		{name: "nonsense", query: "zzzz qqqq xxxx", entry: true},
		{name: "empty", query: "", entry: false},
		{name: "punctuation only", query: "?!...", entry: false},
		{name: "too long", query: strings.Repeat("a", 151), entry: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := m.Resolve(tt.query)
			require.NotNil(t, match)
			assert.False(t, match.Valid(m.MinRatio()))
			assert.Equal(t, tt.entry, match.Entry != nil)
			if !tt.entry {
				assert.Equal(t, 0.0, match.Score())
				res := match.Result(m.MinRatio())
				assert.Equal(t, tt.query, res.Query)
				assert.Zero(t, res.ID)
			}
		})
	}
}

func TestResolveQueryAtLengthLimit(t *testing.T) {
	m := newTestMatcher(t, testBooks(), testSeries(), config.DefaultMatching())

	match := m.Resolve(strings.Repeat("a", 150))
	assert.NotNil(t, match.Entry, "limit is inclusive")
}

func TestResolveTieBreak(t *testing.T) {
	books := []catalog.BookRow{
		{ID: 1, Title: "Dune", Author: "Frank Herbert", Popularity: 50, Pages: 100},
		{ID: 2, Title: "Dune", Author: "Brian Herbert", Popularity: 10, Pages: 500, Extra: map[string]any{"rating": 4.5}},
	}

	tests := []struct {
		name string
		key  string
		want int64
	}{
		{name: "popularity", key: "popularity", want: 1},
		{name: "pages", key: "pages", want: 2},
		{name: "missing on one candidate", key: "rating", want: 2},
		{name: "missing everywhere", key: "weight", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultMatching()
			cfg.TieBreakKey = tt.key
			m := newTestMatcher(t, books, nil, cfg)

			match := m.Resolve("dune")
			require.NotNil(t, match.Entry)
			assert.Equal(t, tt.want, match.Entry.ID)
		})
	}
}

func fillerBooks(n int) []catalog.BookRow {
	books := make([]catalog.BookRow, 0, n)
	for i := 0; i < n; i++ {
		books = append(books, catalog.BookRow{
			ID:         int64(1000 + i),
			Title:      fmt.Sprintf("Catalogue Filler %04d", i),
			Author:     "Anonymous",
			Popularity: int64(100 + i%50),
		})
	}
	return books
}

func TestResolvePrefilter(t *testing.T) {
	cfg := config.DefaultMatching()
	cfg.TieBreakKey = "pages"

	t.Run("popular slice short-circuits", func(t *testing.T) {
		books := fillerBooks(1200)
		books = append(books,
			catalog.BookRow{ID: 1, Title: "The Name of the Wind", Author: "Patrick Rothfuss", Popularity: 10000, Pages: 10},
			catalog.BookRow{ID: 2, Title: "The Name of the Wind", Author: "Someone Else", Popularity: 1, Pages: 900},
		)
		m := newTestMatcher(t, books, nil, cfg)

		match := m.Resolve("the name of the wind")
		require.NotNil(t, match.Entry)
		// The tail copy would win the tie on pages if it had been scored.
		assert.Equal(t, int64(1), match.Entry.ID)
	})

	t.Run("tail reached by full scan", func(t *testing.T) {
		books := fillerBooks(1200)
		books = append(books,
			catalog.BookRow{ID: 2, Title: "The Name of the Wind", Author: "Someone Else", Popularity: 1, Pages: 900},
		)
		m := newTestMatcher(t, books, nil, cfg)

		match := m.Resolve("the name of the wind")
		require.NotNil(t, match.Entry)
		assert.Equal(t, int64(2), match.Entry.ID)
		assert.True(t, match.Valid(m.MinRatio()))
	})
}

func TestResolvePartialMode(t *testing.T) {
	cfg := config.DefaultMatching()
	cfg.SearchMode = "partial"
	m := newTestMatcher(t, testBooks(), testSeries(), cfg)

	match := m.Resolve("philosophers stone")
	require.NotNil(t, match.Entry)
	assert.Equal(t, int64(1), match.Entry.ID)
	assert.Equal(t, 100.0, match.RawScore)
}
