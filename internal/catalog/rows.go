package catalog

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// BookRow is one row of the books table as delivered by the bulk catalog export.
type BookRow struct {
	ID          int64  `json:"book_id" parquet:"book_id" csv:"book_id" db:"book_id"`
	Title       string `json:"title" parquet:"title" csv:"title" db:"title"`
	Author      string `json:"author" parquet:"author" csv:"author" db:"author"`
	Popularity  int64  `json:"popularity" parquet:"popularity,optional" csv:"popularity" db:"popularity"`
	SeriesID    int64  `json:"series_id,omitempty" parquet:"series_id,optional" csv:"series_id" db:"series_id"` // 0 when standalone
	BookNumber  string `json:"book_number,omitempty" parquet:"book_number,optional" csv:"book_number" db:"book_number"`
	SeriesTitle string `json:"series_title,omitempty" parquet:"series_title,optional" csv:"series_title" db:"series_title"`

	// Descriptive fields, forwarded as Info for the winning entry only
	Pages   int    `json:"pages,omitempty" parquet:"pages,optional" csv:"pages" db:"pages"`
	Year    int    `json:"year,omitempty" parquet:"year,optional" csv:"year" db:"year"`
	Summary string `json:"summary,omitempty" parquet:"summary,optional" csv:"summary" db:"summary"`
	Tags    Tags   `json:"tags,omitempty" parquet:"tags,list" csv:"tags" db:"tags"`
	Link    string `json:"link,omitempty" parquet:"link,optional" csv:"link" db:"link"`

	// Extra holds columns the loader did not recognise (JSONL only).
	Extra map[string]any `json:"-" parquet:"-" csv:"-" db:"-"`
}

// SeriesRow is one row of the series table.
type SeriesRow struct {
	ID         int64  `json:"series_id" parquet:"series_id" csv:"series_id" db:"series_id"`
	Title      string `json:"title" parquet:"title" csv:"title" db:"title"`
	Author     string `json:"author" parquet:"author" csv:"author" db:"author"`
	Popularity int64  `json:"popularity" parquet:"popularity,optional" csv:"popularity" db:"popularity"`
}

// TagSeparator joins tags in flat formats (CSV, SQLite).
const TagSeparator = "|"

// Tags is a list of subject tags. Flat formats store it as a pipe-separated string.
type Tags []string

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (t *Tags) UnmarshalCSV(s string) error {
	*t = splitTags(s)
	return nil
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (t Tags) MarshalCSV() (string, error) {
	return strings.Join(t, TagSeparator), nil
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = nil
	case string:
		*t = splitTags(v)
	case []byte:
		*t = splitTags(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Tags", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (t Tags) Value() (driver.Value, error) {
	return strings.Join(t, TagSeparator), nil
}

func splitTags(s string) Tags {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var tags Tags
	for _, tag := range strings.Split(s, TagSeparator) {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
