package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

var (
	// ErrEmptyCatalog is returned when the books table has no rows.
	ErrEmptyCatalog = errors.New("catalog has no books")
	// ErrInvalidRow is returned for rows missing a title.
	ErrInvalidRow = errors.New("invalid catalog row")
	// ErrDuplicateID is returned when two rows of the same table share an id.
	ErrDuplicateID = errors.New("duplicate catalog id")
)

// AuthorIndex groups entries by normalized author last name. Looking up a key that
// is not present returns an empty collection. Entries within a bucket keep catalog
// order, which is popularity descending.
type AuthorIndex struct {
	keys    []string
	buckets map[string][]*Entry
}

func newAuthorIndex(entries []*Entry) *AuthorIndex {
	idx := &AuthorIndex{buckets: make(map[string][]*Entry)}
	for _, e := range entries {
		if _, ok := idx.buckets[e.AuthorLastName]; !ok {
			idx.keys = append(idx.keys, e.AuthorLastName)
		}
		idx.buckets[e.AuthorLastName] = append(idx.buckets[e.AuthorLastName], e)
	}
	return idx
}

// Keys returns the author keys in first-seen order. The slice must not be modified.
func (a *AuthorIndex) Keys() []string {
	return a.keys
}

// Entries returns the bucket for key, or nil when there is none.
func (a *AuthorIndex) Entries(key string) []*Entry {
	return a.buckets[key]
}

// Len returns the number of distinct author keys.
func (a *AuthorIndex) Len() int {
	return len(a.keys)
}

// Index is the immutable, process-lifetime view of the catalog. It is safe for
// concurrent reads.
type Index struct {
	books  []*Entry
	series []*Entry

	booksByAuthor  *AuthorIndex
	seriesByAuthor *AuthorIndex

	bookByID   map[int64]*Entry
	seriesByID map[int64]*Entry
	firstBook  map[int64]*Entry
	info       map[int64]*Info
}

// Stats summarises an Index for logs and the inspect command.
type Stats struct {
	Books         int `json:"books"`
	Series        int `json:"series"`
	BookAuthors   int `json:"book_authors"`
	SeriesAuthors int `json:"series_authors"`
	SeriesWithout int `json:"series_without_books"`
}

// NewIndex builds the catalog from bulk rows. Both tables are re-sorted by popularity
// descending, which the popularity prefilter relies on.
func NewIndex(books []BookRow, series []SeriesRow) (*Index, error) {
	if len(books) == 0 {
		return nil, ErrEmptyCatalog
	}

	idx := &Index{
		books:      make([]*Entry, 0, len(books)),
		series:     make([]*Entry, 0, len(series)),
		bookByID:   make(map[int64]*Entry, len(books)),
		seriesByID: make(map[int64]*Entry, len(series)),
		info:       make(map[int64]*Info, len(books)),
	}

	for i, row := range books {
		if strings.TrimSpace(row.Title) == "" {
			return nil, fmt.Errorf("%w: book row %d (id %d) has no title", ErrInvalidRow, i, row.ID)
		}
		if _, exists := idx.bookByID[row.ID]; exists {
			return nil, fmt.Errorf("%w: book %d", ErrDuplicateID, row.ID)
		}
		e := newBookEntry(row)
		idx.books = append(idx.books, e)
		idx.bookByID[row.ID] = e
		idx.info[row.ID] = newInfo(row)
	}

	for i, row := range series {
		if strings.TrimSpace(row.Title) == "" {
			return nil, fmt.Errorf("%w: series row %d (id %d) has no title", ErrInvalidRow, i, row.ID)
		}
		if _, exists := idx.seriesByID[row.ID]; exists {
			return nil, fmt.Errorf("%w: series %d", ErrDuplicateID, row.ID)
		}
		e := newSeriesEntry(row)
		idx.series = append(idx.series, e)
		idx.seriesByID[row.ID] = e
	}

	sortByPopularity(idx.books)
	sortByPopularity(idx.series)

	idx.booksByAuthor = newAuthorIndex(idx.books)
	idx.seriesByAuthor = newAuthorIndex(idx.series)
	idx.firstBook = firstBooks(idx.books)

	stats := idx.Stats()
	if stats.Series == 0 {
		slog.Warn("Catalog has no series, series matching is disabled")
	}
	slog.Info("Catalog index built",
		"books", stats.Books,
		"series", stats.Series,
		"book_authors", stats.BookAuthors,
		"series_authors", stats.SeriesAuthors,
		"series_without_books", stats.SeriesWithout)

	return idx, nil
}

func sortByPopularity(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Popularity > entries[j].Popularity
	})
}

// Books returns every book, most popular first. The slice must not be modified.
func (idx *Index) Books() []*Entry { return idx.books }

// Series returns every series, most popular first. The slice must not be modified.
func (idx *Index) Series() []*Entry { return idx.series }

// BooksByAuthor returns the author grouping of books.
func (idx *Index) BooksByAuthor() *AuthorIndex { return idx.booksByAuthor }

// SeriesByAuthor returns the author grouping of series.
func (idx *Index) SeriesByAuthor() *AuthorIndex { return idx.seriesByAuthor }

// Book looks up a book by id.
func (idx *Index) Book(id int64) (*Entry, bool) {
	e, ok := idx.bookByID[id]
	return e, ok
}

// SeriesEntry looks up a series by id.
func (idx *Index) SeriesEntry(id int64) (*Entry, bool) {
	e, ok := idx.seriesByID[id]
	return e, ok
}

// FirstBook returns the canonical first book of a series.
func (idx *Index) FirstBook(seriesID int64) (*Entry, bool) {
	e, ok := idx.firstBook[seriesID]
	return e, ok
}

// Info returns the descriptive record of a book.
func (idx *Index) Info(bookID int64) (*Info, bool) {
	i, ok := idx.info[bookID]
	return i, ok
}

// Stats reports sizes of the index.
func (idx *Index) Stats() Stats {
	without := 0
	for _, s := range idx.series {
		if _, ok := idx.firstBook[s.ID]; !ok {
			without++
		}
	}
	return Stats{
		Books:         len(idx.books),
		Series:        len(idx.series),
		BookAuthors:   idx.booksByAuthor.Len(),
		SeriesAuthors: idx.seriesByAuthor.Len(),
		SeriesWithout: without,
	}
}
