package evaluation

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DatasetItem is one labelled query. ExpectedID 0 means the query should not match.
type DatasetItem struct {
	ID         string `json:"id,omitempty" yaml:"id,omitempty"`
	Query      string `json:"query" yaml:"query"`
	ExpectedID int64  `json:"expected_id,omitempty" yaml:"expected_id,omitempty"`
}

// Dataset is a named collection of labelled queries.
type Dataset struct {
	Name  string        `json:"name" yaml:"name"`
	Items []DatasetItem `json:"items" yaml:"items"`
}

// LoadDataset reads a labelled set from YAML ({name, items}) or JSONL (one item per line).
func LoadDataset(path string) (*Dataset, error) {
	var (
		dataset *Dataset
		err     error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dataset, err = loadYAMLDataset(path)
	case ".jsonl":
		dataset, err = loadJSONLDataset(path)
	default:
		return nil, fmt.Errorf("unsupported dataset format: %s (supported: .yaml, .yml, .jsonl)", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	if dataset.Name == "" {
		dataset.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	for i := range dataset.Items {
		if dataset.Items[i].ID == "" {
			dataset.Items[i].ID = fmt.Sprintf("%d", i+1)
		}
	}
	return dataset, nil
}

func loadYAMLDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	var dataset Dataset
	if err := yaml.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	return &dataset, nil
}

func loadJSONLDataset(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	dataset := &Dataset{}
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var item DatasetItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		dataset.Items = append(dataset.Items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}
	return dataset, nil
}
