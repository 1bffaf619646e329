package cmd

import (
	"context"

	"github.com/lehigh-university-libraries/titlematch/internal/config"
	"github.com/lehigh-university-libraries/titlematch/internal/dataset"
	"github.com/lehigh-university-libraries/titlematch/internal/matching"
)

// buildMatcher loads the configured catalog and wraps it in a Matcher.
func buildMatcher(ctx context.Context, cfg *config.Config) (*matching.Matcher, error) {
	idx, err := dataset.LoadIndex(ctx, cfg.Catalog)
	if err != nil {
		return nil, err
	}
	return matching.New(idx, cfg.Matching)
}
