package evalcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/lehigh-university-libraries/titlematch/internal/evaluation"
)

func executeRun(ctx context.Context, out io.Writer, build BuildFunc, datasetPath, outputDir, outputJSON string, concurrency int) error {
	slog.Info("Loading dataset...", "path", datasetPath)
	dataset, err := evaluation.LoadDataset(datasetPath)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	slog.Info("Dataset loaded", "items", len(dataset.Items))

	m, err := build(ctx)
	if err != nil {
		return err
	}

	results, err := evaluation.NewRunner(m, concurrency).Run(ctx, dataset)
	if err != nil {
		return err
	}

	path, err := evaluation.SaveToYAML(results, outputDir)
	if err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	if outputJSON != "" {
		if err := evaluation.SaveJSON(results, outputJSON); err != nil {
			return err
		}
	}

	if err := evaluation.WriteText(out, results); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nResults saved to: %s\n", path)
	fmt.Fprintf(out, "\nGenerate detailed report with:\n")
	fmt.Fprintf(out, "  titlematch eval report --results %s\n", path)
	return nil
}
