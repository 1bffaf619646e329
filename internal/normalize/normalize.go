package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// AuthorMarker separates the title from the author in a query like "dune by frank herbert".
const AuthorMarker = " by "

// leadingArticles are stripped from the front of a normalized string, in this order.
var leadingArticles = []string{"the ", "a ", "an "}

// String canonicalizes s for comparison: lowercase, diacritics folded, everything
// except letters, digits and whitespace removed, whitespace collapsed and leading
// articles stripped. Articles are stripped repeatedly: "the a dune" becomes "dune".
//
// String is idempotent: String(String(s)) == String(s).
func String(s string) string {
	s = strings.ToLower(s)
	s = foldDiacritics(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	s = strings.Join(strings.Fields(b.String()), " ")
	return stripArticles(s)
}

// HasAuthorMarker reports whether the normalized string carries a " by " separator.
func HasAuthorMarker(normalized string) bool {
	return strings.Contains(normalized, AuthorMarker)
}

// SplitAuthor splits a normalized query on the last " by ". ok is false when the
// query has no marker.
func SplitAuthor(normalized string) (title, author string, ok bool) {
	i := strings.LastIndex(normalized, AuthorMarker)
	if i < 0 {
		return normalized, "", false
	}
	return normalized[:i], normalized[i+len(AuthorMarker):], true
}

// LastNameToken returns the last alphabetic token of at least two characters, which is
// taken to be the author's last name. ok is false if no token qualifies.
func LastNameToken(author string) (string, bool) {
	fields := strings.Fields(author)
	for i := len(fields) - 1; i >= 0; i-- {
		if len([]rune(fields[i])) >= 2 && isAlpha(fields[i]) {
			return fields[i], true
		}
	}
	return "", false
}

// AuthorKey returns the author-index key for a normalized author: the last
// whitespace-delimited token of at least two characters, else the whole string.
func AuthorKey(normalizedAuthor string) string {
	fields := strings.Fields(normalizedAuthor)
	for i := len(fields) - 1; i >= 0; i-- {
		if len([]rune(fields[i])) >= 2 {
			return fields[i]
		}
	}
	return normalizedAuthor
}

func stripArticles(s string) string {
	for {
		stripped := false
		for _, article := range leadingArticles {
			if strings.HasPrefix(s, article) {
				s = s[len(article):]
				stripped = true
				break
			}
		}
		if !stripped {
			return s
		}
	}
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		return folded
	}
	return s
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
