package seeder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWriteScriptAndReport(t *testing.T) {
	p := smallParams()
	p.Likes = 500 // more than the 50 possible pairs
	result, err := Generate(p)
	require.NoError(t, err)

	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "seed", "blog_seed_sqlite.sql")
	require.NoError(t, result.WriteScript(scriptPath))

	data, err := os.ReadFile(scriptPath)
	require.NoError(t, err)
	assert.Equal(t, result.Script(), string(data))

	overlap := MeasureOverlap(result.Dataset, 100, 1)
	reportPath := filepath.Join(dir, "report.yaml")
	require.NoError(t, WriteReport(reportPath, result.Report(&overlap)))

	raw, err := os.ReadFile(reportPath)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, yaml.Unmarshal(raw, &decoded))
	assert.Equal(t, int64(42), decoded.Seed)
	assert.Equal(t, "sqlite", decoded.Dialect)
	assert.Equal(t, "2025-06-01 12:00:00", decoded.Now)
	assert.Equal(t, result.Counts, decoded.Counts)
	require.Len(t, decoded.Shortfalls, 1)
	assert.Contains(t, decoded.Shortfalls[0], "likes: ")
	require.NotNil(t, decoded.Overlap)
}
