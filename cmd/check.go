package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rana718/blogseed/internal/database"
	"github.com/Rana718/blogseed/internal/diagnose"
	"github.com/Rana718/blogseed/internal/logger"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report tag overlap and similar posts of a loaded database",
	Long: `Inspect a seeded database: post and tag counts, a sample published post
with its tags and similar posts, and the average number of tags per post.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig

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

		rep, err := diagnose.Run(ctx, adapter)
		if err != nil {
			return err
		}

		printCheckReport(rep)
		return nil
	},
}

func printCheckReport(rep *diagnose.Report) {
	color.Cyan("🔍 Diagnostics")
	fmt.Printf("Total Posts: %d\n", rep.TotalPosts)
	fmt.Printf("Published Posts: %d\n", rep.PublishedPosts)
	fmt.Printf("Total Tags: %d\n", rep.TotalTags)

	if rep.PublishedPosts == 0 {
		color.Yellow("⚠️  No published posts found!")
		return
	}

	fmt.Printf("Posts with at least 1 tag: %d\n", rep.TaggedPosts)

	if rep.Sample == nil {
		color.Yellow("⚠️  No published posts have tags.")
		return
	}

	fmt.Println()
	color.Cyan("📝 Sample Post: '%s' (ID: %d)", rep.Sample.Title, rep.Sample.ID)
	fmt.Printf("Slug: %s\n", rep.Sample.Slug)

	names := make([]string, len(rep.Sample.Tags))
	ids := make([]string, len(rep.Sample.Tags))
	for i, t := range rep.Sample.Tags {
		names[i] = t.Name
		ids[i] = fmt.Sprint(t.ID)
	}
	fmt.Printf("Tags: [%s] (IDs: [%s])\n", strings.Join(names, ", "), strings.Join(ids, ", "))

	fmt.Printf("Similar Posts Found: %d\n", rep.SimilarCount)
	fmt.Printf("Similar Posts (top %d): %d\n", diagnose.SimilarLimit, len(rep.Similar))
	for _, p := range rep.Similar {
		fmt.Printf(" - %s (ID: %d) - Shared Tags: %d\n", p.Title, p.ID, p.SharedTags)
	}

	fmt.Println()
	color.Cyan("📊 Overlap Check")
	if rep.TotalTags > 0 {
		fmt.Printf("Avg Tags per Post: %.2f\n", rep.AvgTagsPerPost)
		fmt.Printf("Tag Space: %d\n", rep.TotalTags)
	}
	if rep.LowDensity {
		logger.Logger.Warn("low tag density",
			zap.Int64("tags", rep.TotalTags),
			zap.Float64("avg_tags_per_post", rep.AvgTagsPerPost),
		)
		color.Yellow("⚠️  High tag count with low density implies very low overlap probability.")
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
