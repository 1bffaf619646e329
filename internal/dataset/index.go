package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lehigh-university-libraries/titlematch/internal/catalog"
	"github.com/lehigh-university-libraries/titlematch/internal/config"
)

// ErrNoBooksTable is returned when no books source is configured.
var ErrNoBooksTable = errors.New("no books table configured")

// LoadIndex reads both tables and builds the catalog index. The series table is
// optional.
func LoadIndex(ctx context.Context, cfg config.Catalog) (*catalog.Index, error) {
	if cfg.Books == "" {
		return nil, ErrNoBooksTable
	}
	start := time.Now()

	var (
		books  []catalog.BookRow
		series []catalog.SeriesRow
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l, err := NewLoader(cfg.Books)
		if err != nil {
			return fmt.Errorf("books: %w", err)
		}
		books, err = l.Books()
		if err != nil {
			return fmt.Errorf("books: %w", err)
		}
		return ctx.Err()
	})
	if cfg.Series != "" {
		g.Go(func() error {
			l, err := NewLoader(cfg.Series)
			if err != nil {
				return fmt.Errorf("series: %w", err)
			}
			series, err = l.Series()
			if err != nil {
				return fmt.Errorf("series: %w", err)
			}
			return ctx.Err()
		})
	} else {
		slog.Warn("No series table configured")
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	idx, err := catalog.NewIndex(books, series)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog index: %w", err)
	}

	slog.Info("Catalog loaded", "books", cfg.Books, "series", cfg.Series, "duration", time.Since(start))
	return idx, nil
}
