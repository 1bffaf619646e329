package evaluation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// WriteReport renders results as text, json or csv.
func WriteReport(w io.Writer, results *EvaluationResults, format string) error {
	switch format {
	case "text", "":
		return WriteText(w, results)
	case "json":
		return WriteJSON(w, results)
	case "csv":
		return WriteCSV(w, results)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteText renders the summary and the incorrect items as tables.
func WriteText(w io.Writer, results *EvaluationResults) error {
	summary := results.Summary
	if summary == nil {
		summary = Summarize(results.Results)
	}

	fmt.Fprintf(w, "Title Resolution Evaluation: %s\n", results.Name)
	if !results.Timestamp.IsZero() {
		fmt.Fprintf(w, "Run at: %s\n", results.Timestamp.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(w, "Min ratio: %.0f  Search mode: %s  Tie-break: %s\n\n",
		results.Config.MinRatio, results.Config.SearchMode, results.Config.TieBreakKey)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Metric", "Value"})
	tw.AppendRows([]table.Row{
		{"Total records", summary.TotalRecords},
		{"Correct", summary.Correct},
		{"Valid matches", summary.ValidMatches},
		{"False positives", summary.FalsePositives},
		{"Missed", summary.Missed},
		{"Series matches", summary.SeriesMatches},
		{"Truncated matches", summary.Truncated},
		{"Accuracy", percent(summary.Accuracy)},
		{"Precision", percent(summary.Precision)},
		{"Coverage", percent(summary.Coverage)},
		{"Average time", fmt.Sprintf("%.2f ms", summary.AverageTimeMS)},
		{"Max time", fmt.Sprintf("%.2f ms", summary.MaxTimeMS)},
	})
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	tw.Render()

	var failures []ItemResult
	for _, r := range results.Results {
		if !r.Correct {
			failures = append(failures, r)
		}
	}
	if len(failures) == 0 {
		return nil
	}

	fmt.Fprintf(w, "\nIncorrect items (%d):\n", len(failures))
	ft := table.NewWriter()
	ft.SetOutputMirror(w)
	ft.SetStyle(table.StyleRounded)
	ft.AppendHeader(table.Row{"ID", "Query", "Expected", "Matched", "Title", "Score", "Valid"})
	for _, r := range failures {
		ft.AppendRow(table.Row{
			r.ID,
			text.Trim(r.Query, 50),
			idOrDash(r.ExpectedID),
			idOrDash(r.MatchedID),
			text.Trim(r.Title, 50),
			fmt.Sprintf("%.1f", r.Score),
			r.Valid,
		})
	}
	ft.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	ft.Render()
	return nil
}

// WriteJSON writes results as indented JSON.
func WriteJSON(w io.Writer, results *EvaluationResults) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

// WriteCSV writes one row per item.
func WriteCSV(w io.Writer, results *EvaluationResults) error {
	return gocsv.Marshal(results.Results, w)
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func idOrDash(id int64) string {
	if id == 0 {
		return "-"
	}
	return strconv.FormatInt(id, 10)
}
