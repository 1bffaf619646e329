// Package dataset loads the bulk books and series tables the catalog index is built from.
package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/jmoiron/sqlx"
	"github.com/parquet-go/parquet-go"
	_ "modernc.org/sqlite"

	"github.com/lehigh-university-libraries/titlematch/internal/catalog"
)

// Format is a supported table encoding.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatJSONL   Format = "jsonl"
	FormatCSV     Format = "csv"
	FormatSQLite  Format = "sqlite"
)

// DetectFormat picks the table format from the file extension.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".parquet":
		return FormatParquet, nil
	case ".jsonl", ".json":
		return FormatJSONL, nil
	case ".csv":
		return FormatCSV, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl, .csv, .db, .sqlite)", ext)
	}
}

// Loader reads one table file
type Loader struct {
	path   string
	format Format
}

// NewLoader creates a loader for path
func NewLoader(path string) (*Loader, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	return &Loader{path: path, format: format}, nil
}

// Path returns the file the loader reads
func (l *Loader) Path() string { return l.path }

// Format returns the detected table format
func (l *Loader) Format() Format { return l.format }

const booksQuery = `SELECT
	book_id,
	title,
	COALESCE(author, '') AS author,
	COALESCE(popularity, 0) AS popularity,
	COALESCE(series_id, 0) AS series_id,
	COALESCE(book_number, '') AS book_number,
	COALESCE(series_title, '') AS series_title,
	COALESCE(pages, 0) AS pages,
	COALESCE(year, 0) AS year,
	COALESCE(summary, '') AS summary,
	COALESCE(tags, '') AS tags,
	COALESCE(link, '') AS link
FROM books`

const seriesQuery = `SELECT
	series_id,
	title,
	COALESCE(author, '') AS author,
	COALESCE(popularity, 0) AS popularity
FROM series`

// Books loads every row of a books table
func (l *Loader) Books() ([]catalog.BookRow, error) {
	return l.BooksSample(0)
}

// BooksSample loads at most limit rows of a books table. A limit of 0 loads everything.
func (l *Loader) BooksSample(limit int) ([]catalog.BookRow, error) {
	return load(l, booksQuery, limit, decodeBookLine)
}

// Series loads every row of a series table
func (l *Loader) Series() ([]catalog.SeriesRow, error) {
	return l.SeriesSample(0)
}

// SeriesSample loads at most limit rows of a series table. A limit of 0 loads everything.
func (l *Loader) SeriesSample(limit int) ([]catalog.SeriesRow, error) {
	return load(l, seriesQuery, limit, decodeSeriesLine)
}

func load[T any](l *Loader, query string, limit int, decode func([]byte) (T, error)) ([]T, error) {
	var (
		rows []T
		err  error
	)
	switch l.format {
	case FormatParquet:
		rows, err = loadParquet[T](l.path, limit)
	case FormatJSONL:
		rows, err = loadJSONL(l.path, limit, decode)
	case FormatCSV:
		rows, err = loadCSV[T](l.path, limit)
	case FormatSQLite:
		rows, err = loadSQLite[T](l.path, query, limit)
	default:
		err = fmt.Errorf("unsupported format %q", l.format)
	}
	if err != nil {
		return nil, err
	}
	slog.Debug("Loaded table", "path", l.path, "format", l.format, "rows", len(rows))
	return rows, nil
}

// loadJSONL reads one JSON object per line
func loadJSONL[T any](path string, limit int, decode func([]byte) (T, error)) ([]T, error) {
	slog.Debug("Opening JSONL file", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var rows []T
	scanner := bufio.NewScanner(file)

	// Summaries can make lines long
	const maxCapacity = 10 * 1024 * 1024
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		if limit > 0 && len(rows) >= limit {
			break
		}
		lineNum++
		line := scanner.Bytes()

		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		row, err := decode(line)
		if err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		rows = append(rows, row)

		if lineNum%10000 == 0 {
			slog.Debug("Reading JSONL", "lines_read", lineNum)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	return rows, nil
}

// bookKeys are the JSON keys mapped onto BookRow fields. Anything else is kept as an extra.
var bookKeys = map[string]struct{}{
	"book_id": {}, "title": {}, "author": {}, "popularity": {}, "series_id": {},
	"book_number": {}, "series_title": {}, "pages": {}, "year": {}, "summary": {},
	"tags": {}, "link": {},
}

func decodeBookLine(line []byte) (catalog.BookRow, error) {
	var row catalog.BookRow
	if err := json.Unmarshal(line, &row); err != nil {
		return row, err
	}

	var all map[string]any
	if err := json.Unmarshal(line, &all); err != nil {
		return row, err
	}
	for k := range bookKeys {
		delete(all, k)
	}
	if len(all) > 0 {
		row.Extra = all
	}
	return row, nil
}

func decodeSeriesLine(line []byte) (catalog.SeriesRow, error) {
	var row catalog.SeriesRow
	err := json.Unmarshal(line, &row)
	return row, err
}

// loadParquet reads rows in batches
func loadParquet[T any](path string, limit int) ([]T, error) {
	slog.Debug("Opening Parquet file", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[T](pf)
	defer reader.Close()

	var records []T
	batch := make([]T, 128)

	for limit <= 0 || len(records) < limit {
		n, err := reader.Read(batch)
		if n > 0 {
			if limit > 0 && n > limit-len(records) {
				n = limit - len(records)
			}
			records = append(records, batch[:n]...)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	return records, nil
}

// loadCSV reads a headered CSV file
func loadCSV[T any](path string, limit int) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer file.Close()

	var rows []T
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// loadSQLite selects rows with query from a SQLite database
func loadSQLite[T any](path, query string, limit int) ([]T, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	defer db.Close()

	var rows []T
	if limit > 0 {
		err = db.Select(&rows, query+" LIMIT ?", limit)
	} else {
		err = db.Select(&rows, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", path, err)
	}
	return rows, nil
}
