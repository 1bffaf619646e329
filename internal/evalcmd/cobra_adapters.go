package evalcmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/titlematch/internal/matching"
)

// BuildFunc loads the configured catalog into a Matcher.
type BuildFunc func(ctx context.Context) (*matching.Matcher, error)

// NewRunCmd creates the run command for evaluating a labelled query set
func NewRunCmd(build BuildFunc) *cobra.Command {
	var datasetPath string
	var outputDir string
	var outputJSON string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate the resolver on a labelled query set",
		Long: `Resolve every query of a labelled set and compare the result with the expected
book id. Items without expected_id must not resolve to a confident match.

The dataset is YAML ({name, items: [{query, expected_id}]}) or JSONL (one item per line).
Results are saved under the output directory as <name>-<timestamp>.yaml.`,
		Example: `  # Evaluate a labelled set
  titlematch eval run --dataset requests.yaml --books books.parquet --series series.parquet

  # Also write JSON results
  titlematch eval run --dataset requests.jsonl --output-json results.json --concurrency 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(datasetPath); os.IsNotExist(err) {
				return fmt.Errorf("dataset file not found: %s", datasetPath)
			}
			return executeRun(cmd.Context(), cmd.OutOrStdout(), build, datasetPath, outputDir, outputJSON, concurrency)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Path to labelled query set (.yaml or .jsonl)")
	cmd.Flags().StringVar(&outputDir, "output", "evals", "Directory for YAML results")
	cmd.Flags().StringVar(&outputJSON, "output-json", "", "Optional path for JSON results")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Number of queries resolved in parallel")

	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

// NewReportCmd creates the report command for saved results
func NewReportCmd() *cobra.Command {
	var resultsPath string
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report on saved evaluation results",
		Example: `  titlematch eval report --results evals/requests-2025-01-02_15-04-05.yaml
  titlematch eval report --results results.json --format csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(cmd.OutOrStdout(), resultsPath, format)
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "", "Path to saved results (.yaml or .json)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, json, csv)")

	_ = cmd.MarkFlagRequired("results")
	return cmd
}
