package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Rana718/blogseed/internal/database"
	"github.com/Rana718/blogseed/internal/logger"
	"github.com/Rana718/blogseed/internal/seeder"
	"github.com/Rana718/blogseed/internal/utils"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	loadFile  string
	loadSplit bool
	loadForce bool
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Execute a seed SQL script against the database",
	Long: `Execute a generated seed script against the database named by the
configured URL environment variable (DATABASE_URL by default).

The whole script is sent in one call. Use --split to run it statement by
statement inside a single transaction instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig

		path := loadFile
		if path == "" {
			dialect, err := seeder.ParseDialect(cfg.GetDialect())
			if err != nil {
				return err
			}
			path = defaultOutput(dialect)
		}
		color.Cyan("📂 Using SQL file: %s", path)

		script, err := database.ReadScript(path)
		if err != nil {
			return err
		}

		if !utils.AskConfirmation(cmd.InOrStdin(), cmd.OutOrStdout(),
			"⚠️  This deletes all rows in the blog tables before inserting. Continue?", loadForce) {
			color.Yellow("Load cancelled.")
			return nil
		}

		dbURL, err := cfg.GetDatabaseURL()
		if err != nil {
			return err
		}

		ctx := context.Background()
		adapter, err := database.NewAdapter(cfg.Database.Provider)
		if err != nil {
			return err
		}
		if err := adapter.Connect(ctx, dbURL); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer adapter.Close()

		if err := adapter.Ping(ctx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		color.Yellow("⏳ Starting SQL execution...")
		start := time.Now()
		if err := database.RunScript(ctx, adapter, script, loadSplit); err != nil {
			var scriptErr *database.ScriptError
			if errors.As(err, &scriptErr) {
				color.Red("❌ SQL execution failed. See details below:")
				fmt.Println(scriptErr.Err)
				color.Yellow("--- Last %d characters of %s ---", database.TailSize, filepath.Base(path))
				fmt.Println(scriptErr.Tail)
			}
			return err
		}

		logger.Logger.Info("seed script executed",
			zap.String("file", path),
			zap.String("provider", cfg.Database.Provider),
			zap.Bool("split", loadSplit),
			zap.Duration("elapsed", time.Since(start)),
		)
		color.Green("✅ Seed SQL executed successfully.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().StringVarP(&loadFile, "file", "f", "", "Path to SQL file (default: the generate output path)")
	loadCmd.Flags().BoolVar(&loadSplit, "split", false, "Execute statement by statement in one transaction")
	loadCmd.Flags().BoolVarP(&loadForce, "force", "y", false, "Skip the confirmation prompt")
}
