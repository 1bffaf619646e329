package evalcmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/titlematch/internal/catalog"
	"github.com/lehigh-university-libraries/titlematch/internal/config"
	"github.com/lehigh-university-libraries/titlematch/internal/matching"
)

func testBuild(ctx context.Context) (*matching.Matcher, error) {
	idx, err := catalog.NewIndex([]catalog.BookRow{
		{ID: 4, Title: "The Hobbit", Author: "J.R.R. Tolkien", Popularity: 90},
		{ID: 5, Title: "Mistborn: The Final Empire", Author: "Brandon Sanderson", Popularity: 70},
	}, nil)
	if err != nil {
		return nil, err
	}
	return matching.New(idx, config.DefaultMatching())
}

func TestRunAndReport(t *testing.T) {
	dir := t.TempDir()
	datasetPath := filepath.Join(dir, "requests.yaml")
	require.NoError(t, os.WriteFile(datasetPath, []byte(`name: requests
items:
  - query: "The Hobbit"
    expected_id: 4
  - query: "mistborn the final empire by sanderson"
    expected_id: 5
`), 0644))

	var out bytes.Buffer
	jsonPath := filepath.Join(dir, "results.json")
	require.NoError(t, executeRun(context.Background(), &out, testBuild, datasetPath, filepath.Join(dir, "evals"), jsonPath, 2))
	assert.Contains(t, out.String(), "100.00%")
	assert.FileExists(t, jsonPath)

	matches, err := filepath.Glob(filepath.Join(dir, "evals", "requests-*.yaml"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	var report bytes.Buffer
	require.NoError(t, executeReport(&report, matches[0], "csv"))
	assert.Equal(t, 3, len(strings.Split(strings.TrimSpace(report.String()), "\n")))

	assert.Error(t, executeReport(&report, filepath.Join(dir, "missing.yaml"), "text"))
}
