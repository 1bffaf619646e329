package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/titlematch/internal/config"
)

// EvaluationResults holds a complete run.
type EvaluationResults struct {
	Name      string             `json:"name" yaml:"name"`
	Timestamp time.Time          `json:"timestamp" yaml:"timestamp"`
	Config    config.Matching    `json:"config" yaml:"config"`
	Summary   *EvaluationSummary `json:"summary" yaml:"summary"`
	Results   []ItemResult       `json:"results" yaml:"results"`
}

// EvaluationSummary aggregates a run.
type EvaluationSummary struct {
	TotalRecords   int     `json:"total_records" yaml:"total_records"`
	Correct        int     `json:"correct" yaml:"correct"`
	ValidMatches   int     `json:"valid_matches" yaml:"valid_matches"`
	CorrectValid   int     `json:"correct_valid" yaml:"correct_valid"`
	FalsePositives int     `json:"false_positives" yaml:"false_positives"`
	Missed         int     `json:"missed" yaml:"missed"`
	SeriesMatches  int     `json:"series_matches" yaml:"series_matches"`
	Truncated      int     `json:"truncated_matches" yaml:"truncated_matches"`
	Accuracy       float64 `json:"accuracy" yaml:"accuracy"`
	Precision      float64 `json:"precision" yaml:"precision"`
	Coverage       float64 `json:"coverage" yaml:"coverage"`
	AverageTimeMS  float64 `json:"average_time_ms" yaml:"average_time_ms"`
	MaxTimeMS      float64 `json:"max_time_ms" yaml:"max_time_ms"`
}

// Summarize computes the aggregate metrics of items.
//
// Accuracy is the share of correct items. Precision is the share of valid matches that
// are correct. Coverage is the share of items with a valid match. A false positive is a
// valid match to the wrong book, and a miss is a labelled item without a valid match.
func Summarize(items []ItemResult) *EvaluationSummary {
	s := &EvaluationSummary{TotalRecords: len(items)}
	if len(items) == 0 {
		return s
	}

	var totalTime float64
	for _, r := range items {
		totalTime += r.DurationMS
		if r.DurationMS > s.MaxTimeMS {
			s.MaxTimeMS = r.DurationMS
		}
		if r.Correct {
			s.Correct++
		}
		if !r.Valid {
			if r.ExpectedID != 0 {
				s.Missed++
			}
			continue
		}

		s.ValidMatches++
		if r.IsSeries {
			s.SeriesMatches++
		}
		if r.FromTruncatedFallback {
			s.Truncated++
		}
		if r.Correct {
			s.CorrectValid++
		} else {
			s.FalsePositives++
		}
	}

	total := float64(len(items))
	s.Accuracy = float64(s.Correct) / total
	s.Coverage = float64(s.ValidMatches) / total
	if s.ValidMatches > 0 {
		s.Precision = float64(s.CorrectValid) / float64(s.ValidMatches)
	}
	s.AverageTimeMS = totalTime / total
	return s
}

// SaveToYAML writes results to dir as <name>-<timestamp>.yaml and returns the file path.
func SaveToYAML(results *EvaluationResults, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create evals directory: %w", err)
	}

	timestamp := results.Timestamp.Format("2006-01-02_15-04-05")
	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.yaml", results.Name, timestamp))

	data, err := yaml.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}
	return filename, nil
}

// SaveJSON writes results to path as indented JSON.
func SaveJSON(results *EvaluationResults, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}

// LoadResults reads a saved run, in YAML or JSON by extension.
func LoadResults(path string) (*EvaluationResults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}

	var results EvaluationResults
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &results)
	case ".json":
		err = json.Unmarshal(data, &results)
	default:
		return nil, fmt.Errorf("unsupported results format: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse results: %w", err)
	}

	if results.Summary == nil {
		results.Summary = Summarize(results.Results)
	}
	return &results, nil
}
