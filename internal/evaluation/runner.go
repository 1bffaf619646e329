// Package evaluation measures resolver accuracy on labelled query sets.
package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lehigh-university-libraries/titlematch/internal/matching"
)

// ItemResult is the outcome of one labelled query.
type ItemResult struct {
	ID                    string  `json:"id" yaml:"id" csv:"id"`
	Query                 string  `json:"query" yaml:"query" csv:"query"`
	ExpectedID            int64   `json:"expected_id" yaml:"expected_id" csv:"expected_id"`
	MatchedID             int64   `json:"matched_id" yaml:"matched_id" csv:"matched_id"`
	SeriesID              int64   `json:"series_id,omitempty" yaml:"series_id,omitempty" csv:"series_id"`
	Title                 string  `json:"title,omitempty" yaml:"title,omitempty" csv:"title"`
	RawScore              float64 `json:"raw_score" yaml:"raw_score" csv:"raw_score"`
	Score                 float64 `json:"score" yaml:"score" csv:"score"`
	IsSeries              bool    `json:"is_series" yaml:"is_series" csv:"is_series"`
	FromTruncatedFallback bool    `json:"from_truncated_fallback" yaml:"from_truncated_fallback" csv:"from_truncated_fallback"`
	Valid                 bool    `json:"valid" yaml:"valid" csv:"valid"`
	Correct               bool    `json:"correct" yaml:"correct" csv:"correct"`
	DurationMS            float64 `json:"duration_ms" yaml:"duration_ms" csv:"duration_ms"`
}

// Runner resolves every item of a dataset against one Matcher.
type Runner struct {
	matcher     *matching.Matcher
	concurrency int
}

// NewRunner creates a runner. Concurrency below 1 runs items one at a time.
func NewRunner(m *matching.Matcher, concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{matcher: m, concurrency: concurrency}
}

// Run evaluates dataset. Item results keep dataset order.
func (r *Runner) Run(ctx context.Context, dataset *Dataset) (*EvaluationResults, error) {
	slog.Info("Starting evaluation run", "dataset", dataset.Name, "items", len(dataset.Items), "concurrency", r.concurrency)
	start := time.Now()

	items := make([]ItemResult, len(dataset.Items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, item := range dataset.Items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			items[i] = r.evaluate(item)
			slog.Debug("Evaluated item", "id", item.ID, "progress", fmt.Sprintf("%d/%d", i+1, len(dataset.Items)), "correct", items[i].Correct)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluation interrupted: %w", err)
	}

	results := &EvaluationResults{
		Name:      dataset.Name,
		Timestamp: start,
		Config:    r.matcher.Config(),
		Results:   items,
		Summary:   Summarize(items),
	}
	slog.Info("Evaluation finished", "dataset", dataset.Name, "accuracy", results.Summary.Accuracy, "duration", time.Since(start))
	return results, nil
}

func (r *Runner) evaluate(item DatasetItem) ItemResult {
	start := time.Now()
	match := r.matcher.Resolve(item.Query)
	elapsed := time.Since(start)

	res := match.Result(r.matcher.MinRatio())
	out := ItemResult{
		ID:                    item.ID,
		Query:                 item.Query,
		ExpectedID:            item.ExpectedID,
		MatchedID:             res.ID,
		SeriesID:              res.SeriesID,
		Title:                 res.Title,
		RawScore:              res.RawScore,
		Score:                 res.Score,
		IsSeries:              res.IsSeries,
		FromTruncatedFallback: res.FromTruncatedFallback,
		Valid:                 res.Valid,
		DurationMS:            float64(elapsed.Microseconds()) / 1000,
	}
	out.Correct = isCorrect(out)
	return out
}

// isCorrect: a labelled query must resolve validly to its expected book; an
// unlabelled one must not resolve validly at all.
func isCorrect(r ItemResult) bool {
	if r.ExpectedID == 0 {
		return !r.Valid
	}
	return r.Valid && r.MatchedID == r.ExpectedID
}
