package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/titlematch/internal/matching"
)

func newResolveCmd(opts *rootOptions) *cobra.Command {
	var textPath string
	var asJSON bool
	var maxQueries int

	cmd := &cobra.Command{
		Use:   "resolve [query...]",
		Short: "Resolve book requests against the catalog",
		Long: `Resolve one or more free-text book requests.

Queries come from the arguments, or from the {{...}} requests found in a text file
(use - for stdin).`,
		Example: `  # Resolve a single request
  titlematch resolve --books books.parquet --series series.parquet "harry potter by jk rowling"

  # Resolve every {{...}} request in a comment body
  echo "any recs like {{The Hobbit}} or {{Mistborn}}?" | titlematch resolve --text - --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			queries := args
			if textPath != "" {
				body, err := readText(cmd.InOrStdin(), textPath)
				if err != nil {
					return err
				}
				queries = append(queries, matching.ExtractQueries(body, maxQueries)...)
			}
			if len(queries) == 0 {
				return fmt.Errorf("no queries given")
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			m, err := buildMatcher(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			results := make([]matching.Result, 0, len(queries))
			for _, q := range queries {
				results = append(results, m.Resolve(q).Result(m.MinRatio()))
			}

			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(results)
			}
			printResults(cmd.OutOrStdout(), results)
			return nil
		},
	}

	cmd.Flags().StringVar(&textPath, "text", "", "Read {{...}} requests from a text file (- for stdin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	cmd.Flags().IntVar(&maxQueries, "max", 10, "Maximum requests taken from --text (0 for all)")

	return cmd
}

func readText(stdin io.Reader, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	return string(data), nil
}

func printResults(w io.Writer, results []matching.Result) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Query", "ID", "Title", "Author", "Score", "Series", "Valid"})
	for _, r := range results {
		id := "-"
		if r.ID != 0 {
			id = fmt.Sprintf("%d", r.ID)
		}
		kind := ""
		if r.IsSeries {
			kind = fmt.Sprintf("%d", r.SeriesID)
		}
		if r.FromTruncatedFallback {
			kind = strings.TrimSpace(kind + " (start of title)")
		}
		tw.AppendRow(table.Row{
			text.Trim(r.Query, 40),
			id,
			text.Trim(r.Title, 50),
			text.Trim(r.Author, 30),
			fmt.Sprintf("%.1f", r.Score),
			kind,
			r.Valid,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	tw.Render()
}
