package catalog

import (
	"encoding/json"
	"strconv"

	"github.com/lehigh-university-libraries/titlematch/internal/normalize"
)

// Entry is a book or a series in the catalog. Entries are shared read-only across
// resolution calls and must not be modified after the Index is built.
type Entry struct {
	ID     int64
	Title  string
	Author string

	NormTitle      string
	NormAuthor     string
	AuthorLastName string

	IsSeries   bool
	SeriesID   int64  // books only, 0 when standalone
	BookNumber string // books only
	Popularity int64
}

func newBookEntry(row BookRow) *Entry {
	e := newEntry(row.ID, row.Title, row.Author, row.Popularity, false)
	e.SeriesID = row.SeriesID
	e.BookNumber = CanonicalOrdinal(row.BookNumber)
	return e
}

func newSeriesEntry(row SeriesRow) *Entry {
	return newEntry(row.ID, row.Title, row.Author, row.Popularity, true)
}

func newEntry(id int64, title, author string, popularity int64, isSeries bool) *Entry {
	normAuthor := normalize.String(author)
	return &Entry{
		ID:             id,
		Title:          title,
		Author:         author,
		NormTitle:      normalize.String(title),
		NormAuthor:     normAuthor,
		AuthorLastName: normalize.AuthorKey(normAuthor),
		IsSeries:       isSeries,
		Popularity:     popularity,
	}
}

// Info is the free-form descriptive record of a book.
type Info struct {
	BookID int64
	fields map[string]any
}

func newInfo(row BookRow) *Info {
	fields := make(map[string]any, len(row.Extra)+12)
	for k, v := range row.Extra {
		fields[k] = v
	}
	fields["book_id"] = row.ID
	fields["title"] = row.Title
	fields["author"] = row.Author
	fields["popularity"] = row.Popularity
	fields["pages"] = row.Pages
	fields["year"] = row.Year
	fields["summary"] = row.Summary
	fields["tags"] = []string(row.Tags)
	fields["link"] = row.Link
	if row.SeriesID != 0 {
		fields["series_id"] = row.SeriesID
		fields["series_title"] = row.SeriesTitle
		fields["book_number"] = CanonicalOrdinal(row.BookNumber)
	}
	return &Info{BookID: row.ID, fields: fields}
}

// Get returns the raw value stored under key.
func (i *Info) Get(key string) (any, bool) {
	if i == nil {
		return nil, false
	}
	v, ok := i.fields[key]
	return v, ok
}

// String returns the value under key when it is a string.
func (i *Info) String(key string) (string, bool) {
	v, ok := i.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Number returns the value under key as a float64. Numeric strings are accepted;
// anything else reports false.
func (i *Info) Number(key string) (float64, bool) {
	v, ok := i.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Fields returns a copy of every field.
func (i *Info) Fields() map[string]any {
	if i == nil {
		return nil
	}
	out := make(map[string]any, len(i.fields))
	for k, v := range i.fields {
		out[k] = v
	}
	return out
}

// MarshalJSON renders the fields as a flat object.
func (i *Info) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.fields)
}

// UnmarshalJSON reads an object written by MarshalJSON.
func (i *Info) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	i.fields = fields
	if id, ok := i.Number("book_id"); ok {
		i.BookID = int64(id)
	}
	return nil
}
