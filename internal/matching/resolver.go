// Package matching resolves free-text book requests against the catalog.
//
// A request is normalized, searched by author when it reads "<title> by <author>",
// otherwise searched across all books and series, and the best scoring candidate is
// returned. Resolution never fails: a query without a confident candidate yields a
// Match whose Valid method reports false.
package matching

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/lehigh-university-libraries/titlematch/internal/catalog"
	"github.com/lehigh-university-libraries/titlematch/internal/config"
	"github.com/lehigh-university-libraries/titlematch/internal/similarity"
)

// Matcher resolves queries against one catalog snapshot. It holds no mutable state
// and is safe for concurrent use.
type Matcher struct {
	index *catalog.Index
	cfg   config.Matching
	mode  similarity.Mode
}

// New builds a Matcher over index with a fixed configuration.
func New(index *catalog.Index, cfg config.Matching) (*Matcher, error) {
	if index == nil {
		return nil, fmt.Errorf("matcher needs a catalog index")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode, err := similarity.ParseMode(cfg.SearchMode)
	if err != nil {
		return nil, err
	}
	return &Matcher{index: index, cfg: cfg, mode: mode}, nil
}

// Index returns the catalog snapshot the matcher reads.
func (m *Matcher) Index() *catalog.Index { return m.index }

// Config returns the matching configuration.
func (m *Matcher) Config() config.Matching { return m.cfg }

// MinRatio is the confidence threshold callers test Match.Valid against.
func (m *Matcher) MinRatio() float64 { return m.cfg.MinRatio }

// Resolve returns the best catalog match for raw. It always returns a Match.
func (m *Matcher) Resolve(raw string) *Match {
	q := NewQuery(raw)

	if utf8.RuneCountInString(q.Normalized) > m.cfg.MaxQueryLength {
		slog.Warn("Query too long, skipping", "length", utf8.RuneCountInString(q.Normalized), "max", m.cfg.MaxQueryLength)
		return invalidMatch(q)
	}
	if q.Normalized == "" {
		return invalidMatch(q)
	}

	var pool []*Match
	if q.HasAuthorMarker {
		pool = append(pool, m.searchByAuthor(q, m.index.BooksByAuthor(), false)...)
		pool = append(pool, m.searchByAuthor(q, m.index.SeriesByAuthor(), true)...)
		if !m.anyValid(pool) {
			slog.Debug("No confident match filtered on author, searching whole catalog", "query", q.Normalized)
			pool = nil
		}
	}

	if pool == nil {
		pool = append(pool, m.search(q, q.Normalized, m.index.Books(), false, m.cfg.GeneralK, m.mode)...)
		pool = append(pool, m.search(q, q.Normalized, m.index.Series(), true, m.cfg.GeneralK, m.mode)...)
	}

	if len(pool) == 0 {
		return invalidMatch(q)
	}

	m.enrich(pool)
	best := m.pick(pool)

	slog.Debug("Resolved query",
		"query", q.Raw,
		"id", best.display().ID,
		"score", best.Score(),
		"series", best.IsSeries,
		"truncated", best.FromTruncatedFallback,
		"valid", best.Valid(m.cfg.MinRatio))
	return best
}

// pick returns the highest adjusted score. Ties go to the larger tie-break value
// from Info; candidates without a usable value lose the tie. Remaining ties go to the
// first candidate in pool order.
func (m *Matcher) pick(pool []*Match) *Match {
	best := pool[0].Score()
	for _, match := range pool[1:] {
		if s := match.Score(); s > best {
			best = s
		}
	}

	var tied []*Match
	for _, match := range pool {
		if match.Score() == best {
			tied = append(tied, match)
		}
	}
	if len(tied) == 1 {
		return tied[0]
	}

	var winner *Match
	var winnerKey float64
	for _, match := range tied {
		v, ok := match.Info.Number(m.cfg.TieBreakKey)
		if !ok {
			continue
		}
		if winner == nil || v > winnerKey {
			winner, winnerKey = match, v
		}
	}
	if winner == nil {
		slog.Debug("No tie-break value on tied candidates", "key", m.cfg.TieBreakKey, "tied", len(tied))
		return tied[0]
	}
	return winner
}
