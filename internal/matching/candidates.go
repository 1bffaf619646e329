package matching

import (
	"log/slog"
	"sort"
	"unicode/utf8"

	"github.com/lehigh-university-libraries/titlematch/internal/catalog"
	"github.com/lehigh-university-libraries/titlematch/internal/normalize"
	"github.com/lehigh-university-libraries/titlematch/internal/similarity"
)

// searchByAuthor restricts the search to entries whose author last name is close to
// the one given after " by ". It returns nil when no author key clears the threshold.
func (m *Matcher) searchByAuthor(q *Query, byAuthor *catalog.AuthorIndex, isSeries bool) []*Match {
	title, author, ok := normalize.SplitAuthor(q.Normalized)
	if !ok {
		return nil
	}
	lastName, ok := normalize.LastNameToken(author)
	if !ok {
		slog.Debug("No author last name in query", "query", q.Normalized)
		return nil
	}

	keys := byAuthor.Keys()
	var pool []*catalog.Entry
	var matched []string
	for _, s := range similarity.Extract(lastName, keys, similarity.Full, m.cfg.AuthorKeyLimit) {
		if s.Score <= m.cfg.AuthorMinRatio {
			continue
		}
		matched = append(matched, keys[s.Index])
		pool = append(pool, byAuthor.Entries(keys[s.Index])...)
	}
	if len(pool) == 0 {
		slog.Debug("No author above threshold", "last_name", lastName, "series", isSeries)
		return nil
	}

	// Buckets are popularity ordered individually; keep the union ordered too.
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Popularity > pool[j].Popularity
	})

	slog.Debug("Filtered on author", "last_name", lastName, "authors", matched, "pool", len(pool), "series", isSeries)
	return m.search(q, title, pool, isSeries, m.cfg.AuthorK, similarity.Full)
}

// search looks for title in entries. Large lists are first searched on their most
// popular slice only; a confident match there is returned without scanning the rest.
// When the full scan finds nothing confident, start-of-title candidates are added.
func (m *Matcher) search(q *Query, title string, entries []*catalog.Entry, isSeries bool, k int, mode similarity.Mode) []*Match {
	if len(entries) == 0 || title == "" {
		return nil
	}

	if len(entries) > m.cfg.PrefilterMinSize {
		n := int(float64(len(entries)) * m.cfg.PrefilterFraction)
		if n > 0 {
			top := m.fuzz(q, title, entries[:n], isSeries, k, mode)
			if m.anyValid(top) {
				slog.Debug("Confident match among most popular entries", "slice", n, "total", len(entries), "series", isSeries)
				return top
			}
		}
	}

	matches := m.fuzz(q, title, entries, isSeries, k, mode)
	if m.anyValid(matches) {
		return matches
	}
	return append(matches, m.startOfTitles(q, title, entries, isSeries)...)
}

// startOfTitles compares title with every catalog title cut to the title's length,
// for queries that are only the beginning of a long title.
func (m *Matcher) startOfTitles(q *Query, title string, entries []*catalog.Entry, isSeries bool) []*Match {
	n := utf8.RuneCountInString(title)
	choices := make([]string, len(entries))
	for i, e := range entries {
		choices[i] = similarity.Shorten(e.NormTitle, n)
	}

	slog.Debug("Matching start of titles", "query", title, "size", len(entries), "series", isSeries)
	results := similarity.Extract(title, choices, similarity.Full, m.cfg.FallbackK)
	matches := make([]*Match, 0, len(results))
	for _, s := range results {
		matches = append(matches, &Match{
			Query:                 q,
			Entry:                 entries[s.Index],
			RawScore:              s.Score,
			IsSeries:              isSeries,
			FromTruncatedFallback: true,
		})
	}
	return matches
}

// fuzz returns the k best entries for title. In full mode catalog titles shorter
// than the query are padded to its length first.
func (m *Matcher) fuzz(q *Query, title string, entries []*catalog.Entry, isSeries bool, k int, mode similarity.Mode) []*Match {
	n := utf8.RuneCountInString(title)
	choices := make([]string, len(entries))
	for i, e := range entries {
		choices[i] = e.NormTitle
		if mode == similarity.Full {
			choices[i] = similarity.Lateralize(e.NormTitle, n)
		}
	}

	slog.Debug("Matching query against list", "query", title, "size", len(entries), "mode", mode.String(), "series", isSeries)
	results := similarity.Extract(title, choices, mode, k)
	matches := make([]*Match, 0, len(results))
	for _, s := range results {
		matches = append(matches, &Match{
			Query:    q,
			Entry:    entries[s.Index],
			RawScore: s.Score,
			IsSeries: isSeries,
		})
	}
	return matches
}

func (m *Matcher) anyValid(matches []*Match) bool {
	for _, match := range matches {
		if match.Valid(m.cfg.MinRatio) {
			return true
		}
	}
	return false
}
