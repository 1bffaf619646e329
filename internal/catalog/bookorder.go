package catalog

import (
	"regexp"
	"sort"
	"strings"
)

// OrdinalTier ranks book-number notations when choosing the first book of a series.
type OrdinalTier int

const (
	TierInteger OrdinalTier = iota + 1 // "1", "2"
	TierDecimal                        // "0.5", "1,5", "0" (prequels and novellas)
	TierRange                          // "1-3" (compilations)
	TierOther
)

var (
	integerOrdinal = regexp.MustCompile(`^[0-9]+$`)
	decimalOrdinal = regexp.MustCompile(`^[0-9]*[.,][0-9]+$`)
	wholeDecimal   = regexp.MustCompile(`^([0-9]+)\.0+$`)
	zeroOrdinal    = regexp.MustCompile(`^0+$`)
)

// CanonicalOrdinal trims a book number and drops a zero fraction ("2.0" -> "2").
func CanonicalOrdinal(s string) string {
	s = strings.TrimSpace(s)
	if m := wholeDecimal.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// ClassifyOrdinal returns the tier of a book number.
func ClassifyOrdinal(s string) OrdinalTier {
	s = CanonicalOrdinal(s)
	switch {
	case integerOrdinal.MatchString(s) && !zeroOrdinal.MatchString(s):
		return TierInteger
	case integerOrdinal.MatchString(s), decimalOrdinal.MatchString(s):
		return TierDecimal
	case strings.Contains(s, "-"):
		return TierRange
	default:
		return TierOther
	}
}

// ordinalLess orders books by tier, then raw book number as a string, then
// popularity descending and finally id. Within a tier "10" sorts before "2".
func ordinalLess(a, b *Entry) bool {
	ta, tb := ClassifyOrdinal(a.BookNumber), ClassifyOrdinal(b.BookNumber)
	if ta != tb {
		return ta < tb
	}
	if a.BookNumber != b.BookNumber {
		return a.BookNumber < b.BookNumber
	}
	if a.Popularity != b.Popularity {
		return a.Popularity > b.Popularity
	}
	return a.ID < b.ID
}

// SortByOrdinal sorts books in reading order, first book first.
func SortByOrdinal(books []*Entry) {
	sort.SliceStable(books, func(i, j int) bool {
		return ordinalLess(books[i], books[j])
	})
}

// firstBooks maps every series id found on the books to its canonical first book.
func firstBooks(books []*Entry) map[int64]*Entry {
	first := make(map[int64]*Entry)
	for _, b := range books {
		if b.SeriesID == 0 {
			continue
		}
		current, ok := first[b.SeriesID]
		if !ok || ordinalLess(b, current) {
			first[b.SeriesID] = b
		}
	}
	return first
}
