package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBooks() []BookRow {
	return []BookRow{
		{ID: 3, Title: "Harry Potter and the Chamber of Secrets", Author: "J.K. Rowling", Popularity: 80, SeriesID: 10, BookNumber: "2"},
		{ID: 1, Title: "Harry Potter and the Philosopher's Stone", Author: "J.K. Rowling", Popularity: 100, SeriesID: 10, BookNumber: "1", Pages: 223, Year: 1997},
		{ID: 7, Title: "The Hobbit", Author: "J.R.R. Tolkien", Popularity: 90, Tags: Tags{"fantasy", "classics"}},
		{ID: 8, Title: "Harry Potter Boxed Set", Author: "J.K. Rowling", Popularity: 5, SeriesID: 10, BookNumber: "1-7"},
	}
}

func testSeries() []SeriesRow {
	return []SeriesRow{
		{ID: 20, Title: "Middle-earth", Author: "J.R.R. Tolkien", Popularity: 40},
		{ID: 10, Title: "Harry Potter", Author: "J.K. Rowling", Popularity: 120},
	}
}

func TestNewIndex(t *testing.T) {
	idx, err := NewIndex(testBooks(), testSeries())
	require.NoError(t, err)

	books := idx.Books()
	require.Len(t, books, 4)
	for i := 1; i < len(books); i++ {
		assert.GreaterOrEqual(t, books[i-1].Popularity, books[i].Popularity, "books sorted by popularity")
	}
	assert.Equal(t, int64(1), books[0].ID)
	assert.Equal(t, int64(10), idx.Series()[0].ID)

	hp, ok := idx.Book(1)
	require.True(t, ok)
	assert.Equal(t, "harry potter and the philosophers stone", hp.NormTitle)
	assert.Equal(t, "jk rowling", hp.NormAuthor)
	assert.Equal(t, "rowling", hp.AuthorLastName)
	assert.False(t, hp.IsSeries)

	s, ok := idx.SeriesEntry(10)
	require.True(t, ok)
	assert.True(t, s.IsSeries)

	stats := idx.Stats()
	assert.Equal(t, 4, stats.Books)
	assert.Equal(t, 2, stats.Series)
	assert.Equal(t, 2, stats.BookAuthors)
	assert.Equal(t, 1, stats.SeriesWithout)
}

func TestNewIndex_Errors(t *testing.T) {
	_, err := NewIndex(nil, testSeries())
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = NewIndex([]BookRow{{ID: 1, Title: "  "}}, nil)
	assert.ErrorIs(t, err, ErrInvalidRow)

	_, err = NewIndex([]BookRow{{ID: 1, Title: "A"}, {ID: 1, Title: "B"}}, nil)
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = NewIndex(testBooks(), []SeriesRow{{ID: 1, Title: "S"}, {ID: 1, Title: "T"}})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestNewIndex_NoSeriesIsAllowed(t *testing.T) {
	idx, err := NewIndex(testBooks(), nil)
	require.NoError(t, err)
	assert.Empty(t, idx.Series())
	assert.Empty(t, idx.SeriesByAuthor().Keys())
}

func TestAuthorIndex(t *testing.T) {
	idx, err := NewIndex(testBooks(), testSeries())
	require.NoError(t, err)

	byAuthor := idx.BooksByAuthor()
	assert.Equal(t, []string{"rowling", "tolkien"}, byAuthor.Keys())

	rowling := byAuthor.Entries("rowling")
	require.Len(t, rowling, 3)
	assert.Equal(t, []int64{1, 3, 8}, []int64{rowling[0].ID, rowling[1].ID, rowling[2].ID}, "bucket keeps popularity order")

	assert.Empty(t, byAuthor.Entries("pratchett"), "missing key is an empty bucket")
}

func TestFirstBook(t *testing.T) {
	idx, err := NewIndex(testBooks(), testSeries())
	require.NoError(t, err)

	first, ok := idx.FirstBook(10)
	require.True(t, ok)
	assert.Equal(t, int64(1), first.ID)

	_, ok = idx.FirstBook(20)
	assert.False(t, ok)
}

func TestInfo(t *testing.T) {
	idx, err := NewIndex(testBooks(), testSeries())
	require.NoError(t, err)

	info, ok := idx.Info(1)
	require.True(t, ok)

	pages, ok := info.Number("pages")
	require.True(t, ok)
	assert.Equal(t, 223.0, pages)

	title, ok := info.String("series_title")
	require.True(t, ok)
	assert.Empty(t, title)

	bn, ok := info.String("book_number")
	require.True(t, ok)
	assert.Equal(t, "1", bn)

	_, ok = info.Number("summary")
	assert.False(t, ok, "non numeric field")

	hobbit, ok := idx.Info(7)
	require.True(t, ok)
	_, ok = hobbit.Get("series_id")
	assert.False(t, ok, "standalone books carry no series fields")
	assert.Equal(t, []string{"fantasy", "classics"}, hobbit.Fields()["tags"])

	var missing *Info
	_, ok = missing.Number("popularity")
	assert.False(t, ok)
}

func TestInfo_Extra(t *testing.T) {
	rows := []BookRow{{ID: 1, Title: "Dune", Author: "Frank Herbert", Extra: map[string]any{"n_bot": 12.0, "title": "ignored"}}}
	idx, err := NewIndex(rows, nil)
	require.NoError(t, err)

	info, _ := idx.Info(1)
	n, ok := info.Number("n_bot")
	require.True(t, ok)
	assert.Equal(t, 12.0, n)

	title, _ := info.String("title")
	assert.Equal(t, "Dune", title, "known columns win over extras")
}

func TestInfoJSON(t *testing.T) {
	idx, err := NewIndex(testBooks(), testSeries())
	require.NoError(t, err)
	info, _ := idx.Info(1)

	data, err := json.Marshal(info)
	require.NoError(t, err)

	var decoded Info
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, int64(1), decoded.BookID)
	pages, ok := decoded.Number("pages")
	assert.True(t, ok)
	assert.Equal(t, 223.0, pages)
	title, _ := decoded.String("title")
	assert.Equal(t, "Harry Potter and the Philosopher's Stone", title)
}
