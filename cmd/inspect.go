package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/titlematch/internal/catalog"
	"github.com/lehigh-university-libraries/titlematch/internal/dataset"
)

func newInspectCmd(opts *rootOptions) *cobra.Command {
	var limit int
	var stats bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect catalog tables",
		Long: `Print a sample of the configured books and series tables, and optionally build
the index and report its statistics.

Useful for checking that a new export is read with the expected columns.`,
		Example: `  # First 5 rows of each table
  titlematch inspect --books books.jsonl --series series.jsonl --limit 5

  # Build the index and show statistics
  titlematch inspect --books catalog.db --series catalog.db --stats`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Catalog.Books == "" {
				return dataset.ErrNoBooksTable
			}
			out := cmd.OutOrStdout()

			books, err := dataset.NewLoader(cfg.Catalog.Books)
			if err != nil {
				return err
			}
			bookRows, err := books.BooksSample(limit)
			if err != nil {
				return fmt.Errorf("failed to load books: %w", err)
			}
			fmt.Fprintf(out, "Books (%s, %s):\n", books.Path(), books.Format())
			printBooks(out, bookRows)

			if cfg.Catalog.Series != "" {
				series, err := dataset.NewLoader(cfg.Catalog.Series)
				if err != nil {
					return err
				}
				seriesRows, err := series.SeriesSample(limit)
				if err != nil {
					return fmt.Errorf("failed to load series: %w", err)
				}
				fmt.Fprintf(out, "\nSeries (%s, %s):\n", series.Path(), series.Format())
				printSeries(out, seriesRows)
			}

			if !stats {
				return nil
			}
			idx, err := dataset.LoadIndex(cmd.Context(), cfg.Catalog)
			if err != nil {
				return err
			}
			printStats(out, idx.Stats())
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of rows to show per table (0 for all)")
	cmd.Flags().BoolVar(&stats, "stats", false, "Build the index and print its statistics")

	return cmd
}

func printBooks(w io.Writer, rows []catalog.BookRow) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Title", "Author", "Popularity", "Series", "#", "Tags"})
	for _, r := range rows {
		series := ""
		if r.SeriesID != 0 {
			series = fmt.Sprintf("%d", r.SeriesID)
		}
		tw.AppendRow(table.Row{
			r.ID,
			text.Trim(r.Title, 50),
			text.Trim(r.Author, 30),
			r.Popularity,
			series,
			r.BookNumber,
			text.Trim(strings.Join(r.Tags, catalog.TagSeparator), 30),
		})
	}
	tw.Render()
}

func printSeries(w io.Writer, rows []catalog.SeriesRow) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Title", "Author", "Popularity"})
	for _, r := range rows {
		tw.AppendRow(table.Row{r.ID, text.Trim(r.Title, 50), text.Trim(r.Author, 30), r.Popularity})
	}
	tw.Render()
}

func printStats(w io.Writer, s catalog.Stats) {
	fmt.Fprintln(w)
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Index", "Count"})
	tw.AppendRows([]table.Row{
		{"Books", s.Books},
		{"Series", s.Series},
		{"Book authors", s.BookAuthors},
		{"Series authors", s.SeriesAuthors},
		{"Series without books", s.SeriesWithout},
	})
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	tw.Render()
}
