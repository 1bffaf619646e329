package evalcmd

import (
	"fmt"
	"io"

	"github.com/lehigh-university-libraries/titlematch/internal/evaluation"
)

func executeReport(out io.Writer, resultsPath, format string) error {
	results, err := evaluation.LoadResults(resultsPath)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}
	return evaluation.WriteReport(out, results, format)
}
