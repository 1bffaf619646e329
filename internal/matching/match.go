package matching

import (
	"github.com/lehigh-university-libraries/titlematch/internal/catalog"
	"github.com/lehigh-university-libraries/titlematch/internal/normalize"
)

const (
	// SeriesBonus is added to the raw score of series candidates.
	SeriesBonus = 5.0
	// TruncatedMalus is subtracted from candidates found by start-of-title matching.
	TruncatedMalus = 5.0
)

// Query is a user request in raw and normalized form.
type Query struct {
	Raw             string
	Normalized      string
	HasAuthorMarker bool
}

// NewQuery normalizes raw.
func NewQuery(raw string) *Query {
	n := normalize.String(raw)
	return &Query{
		Raw:             raw,
		Normalized:      n,
		HasAuthorMarker: normalize.HasAuthorMarker(n),
	}
}

// Match pairs a query with a scored catalog candidate. A Match without an Entry is
// the invalid result: no candidate, score 0.
type Match struct {
	Query *Query

	// Entry is the scored candidate. Display is what callers show: the canonical
	// first book for a series, else Entry itself. Display is set during enrichment.
	Entry   *catalog.Entry
	Display *catalog.Entry

	RawScore              float64
	IsSeries              bool
	FromTruncatedFallback bool

	// Info is nil until enrichment, and stays nil when the catalog has no record.
	Info *catalog.Info
}

func invalidMatch(q *Query) *Match {
	return &Match{Query: q}
}

// Score is the adjusted score: the raw score plus the series bonus, minus the
// truncated-title malus.
func (m *Match) Score() float64 {
	if m.Entry == nil {
		return 0
	}
	score := m.RawScore
	if m.IsSeries {
		score += SeriesBonus
	}
	if m.FromTruncatedFallback {
		score -= TruncatedMalus
	}
	return score
}

// Valid reports whether the match is confident under minRatio.
func (m *Match) Valid(minRatio float64) bool {
	return m != nil && m.Entry != nil && m.Score() > minRatio
}

func (m *Match) display() *catalog.Entry {
	if m.Display != nil {
		return m.Display
	}
	return m.Entry
}

// Result is the caller-facing view of a Match.
type Result struct {
	Query                 string        `json:"query" yaml:"query"`
	ID                    int64         `json:"id,omitempty" yaml:"id,omitempty"`
	Title                 string        `json:"title,omitempty" yaml:"title,omitempty"`
	Author                string        `json:"author,omitempty" yaml:"author,omitempty"`
	SeriesID              int64         `json:"series_id,omitempty" yaml:"series_id,omitempty"`
	RawScore              float64       `json:"raw_score" yaml:"raw_score"`
	Score                 float64       `json:"score" yaml:"score"`
	IsSeries              bool          `json:"is_series" yaml:"is_series"`
	FromTruncatedFallback bool          `json:"from_truncated_fallback" yaml:"from_truncated_fallback"`
	Valid                 bool          `json:"valid" yaml:"valid"`
	Info                  *catalog.Info `json:"info,omitempty" yaml:"-"`
}

// Result renders the match for callers, using minRatio for the validity flag.
func (m *Match) Result(minRatio float64) Result {
	r := Result{
		RawScore:              m.RawScore,
		Score:                 m.Score(),
		IsSeries:              m.IsSeries,
		FromTruncatedFallback: m.FromTruncatedFallback,
		Valid:                 m.Valid(minRatio),
		Info:                  m.Info,
	}
	if m.Query != nil {
		r.Query = m.Query.Raw
	}
	if d := m.display(); d != nil {
		r.ID = d.ID
		r.Title = d.Title
		r.Author = d.Author
	}
	if m.Entry != nil && m.Entry.IsSeries {
		r.SeriesID = m.Entry.ID
	}
	return r
}
