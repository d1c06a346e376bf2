package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Rana718/blogseed/internal/config"
	"github.com/Rana718/blogseed/internal/database"
	"github.com/Rana718/blogseed/internal/database/sqlite"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNow = "2024-06-01T12:00:00Z"

// runCLI executes the root command with args after resetting flag state left
// over from earlier runs in the same process.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	for _, c := range append([]*cobra.Command{rootCmd}, rootCmd.Commands()...) {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	cfgFile = ""
	viper.Reset()

	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func setupProject(t *testing.T) string {
	t.Helper()
	schema, err := filepath.Abs(filepath.Join("..", "internal", "database", "testdata", "blog_schema_sqlite.sql"))
	require.NoError(t, err)

	dir := t.TempDir()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(originalDir) })

	dbURL := "sqlite://" + filepath.Join(dir, "blog.db")
	t.Setenv("DATABASE_URL", dbURL)
	require.NoError(t, database.LoadFile(context.Background(), "sqlite", dbURL, schema, false))
	return dir
}

func smallArgs(extra ...string) []string {
	args := []string{"generate",
		"--users", "20", "--categories", "4", "--tags", "10", "--posts", "15",
		"--comments", "30", "--likes", "40", "--now", testNow,
	}
	return append(args, extra...)
}

func TestGenerateLoadCheck(t *testing.T) {
	dir := setupProject(t)

	require.NoError(t, runCLI(t, "init"))
	assert.FileExists(t, filepath.Join(dir, config.ConfigFileName))

	require.NoError(t, runCLI(t, smallArgs("--report", "seed/report.yaml", "--stats")...))
	script, err := os.ReadFile(filepath.Join(dir, "seed", "blog_seed_sqlite.sql"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(script), "-- "))
	assert.Contains(t, string(script), "PRAGMA foreign_keys = OFF;")
	assert.FileExists(t, filepath.Join(dir, "seed", "report.yaml"))

	require.NoError(t, runCLI(t, "load", "--force"))
	require.NoError(t, runCLI(t, "load", "--split", "--force"))
	require.NoError(t, runCLI(t, "check"))

	adapter := sqlite.New()
	require.NoError(t, adapter.Connect(context.Background(), os.Getenv("DATABASE_URL")))
	defer adapter.Close()

	result, err := adapter.ExecuteQuery(context.Background(), "SELECT COUNT(*) AS n FROM blog_post")
	require.NoError(t, err)
	assert.Equal(t, int64(15), result.Rows[0]["n"])
}

func TestGenerateIsDeterministic(t *testing.T) {
	dir := setupProject(t)

	require.NoError(t, runCLI(t, smallArgs("--out", "a.sql")...))
	require.NoError(t, runCLI(t, smallArgs("--out", "b.sql")...))

	a, err := os.ReadFile(filepath.Join(dir, "a.sql"))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dir, "b.sql"))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	require.NoError(t, runCLI(t, smallArgs("--out", "c.sql", "--seed", "7")...))
	c, err := os.ReadFile(filepath.Join(dir, "c.sql"))
	require.NoError(t, err)
	assert.NotEqual(t, string(a), string(c))
}

func TestGenerateDialectOutput(t *testing.T) {
	dir := setupProject(t)

	require.NoError(t, runCLI(t, smallArgs("--dialect", "postgresql")...))
	script, err := os.ReadFile(filepath.Join(dir, "seed", "blog_seed_postgres.sql"))
	require.NoError(t, err)
	assert.Contains(t, string(script), "SET session_replication_role = replica;")
}

func TestGenerateDialectOutputAfterInit(t *testing.T) {
	dir := setupProject(t)
	require.NoError(t, runCLI(t, "init"))

	require.NoError(t, runCLI(t, smallArgs("--dialect", "postgres")...))
	script, err := os.ReadFile(filepath.Join(dir, "seed", "blog_seed_postgres.sql"))
	require.NoError(t, err)
	assert.Contains(t, string(script), "SET session_replication_role = replica;")
	assert.NoFileExists(t, filepath.Join(dir, "seed", "blog_seed_sqlite.sql"))

	// a custom output path in the config still wins
	cfgPath := filepath.Join(dir, config.ConfigFileName)
	raw, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	custom := strings.Replace(string(raw), `"seed/blog_seed_sqlite.sql"`, `"out/custom.sql"`, 1)
	require.NotEqual(t, string(raw), custom)
	require.NoError(t, os.WriteFile(cfgPath, []byte(custom), 0644))

	require.NoError(t, runCLI(t, smallArgs("--dialect", "postgres")...))
	assert.FileExists(t, filepath.Join(dir, "out", "custom.sql"))
}

func TestGenerateStrict(t *testing.T) {
	dir := setupProject(t)

	args := []string{"generate", "--users", "2", "--posts", "1", "--likes", "5", "--now", testNow, "--out", "strict.sql"}
	require.NoError(t, runCLI(t, args...))

	require.NoError(t, os.Remove(filepath.Join(dir, "strict.sql")))
	err := runCLI(t, append(args, "--strict")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "likes")
	assert.NoFileExists(t, filepath.Join(dir, "strict.sql"))
}

func TestGenerateRejectsInvalidParams(t *testing.T) {
	setupProject(t)

	assert.Error(t, runCLI(t, "generate", "--posts", "0"))
	assert.Error(t, runCLI(t, "generate", "--dialect", "oracle"))
	assert.Error(t, runCLI(t, "generate", "--now", "yesterday"))
}

func TestLoadMissingFile(t *testing.T) {
	setupProject(t)

	err := runCLI(t, "load", "--file", "nope.sql", "--force")
	assert.EqualError(t, err, "SQL file not found: nope.sql")
}

func TestLoadCancelled(t *testing.T) {
	setupProject(t)
	require.NoError(t, runCLI(t, smallArgs()...))

	rootCmd.SetIn(strings.NewReader("n\n"))
	defer rootCmd.SetIn(nil)
	require.NoError(t, runCLI(t, "load"))

	adapter := sqlite.New()
	require.NoError(t, adapter.Connect(context.Background(), os.Getenv("DATABASE_URL")))
	defer adapter.Close()

	result, err := adapter.ExecuteQuery(context.Background(), "SELECT COUNT(*) AS n FROM blog_post")
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Rows[0]["n"])
}
