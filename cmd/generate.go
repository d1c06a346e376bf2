package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/Rana718/blogseed/internal/config"
	"github.com/Rana718/blogseed/internal/logger"
	"github.com/Rana718/blogseed/internal/seeder"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// overlapSamples is the number of post pairs drawn by --stats.
const overlapSamples = 20000

var (
	genUsers      int
	genCategories int
	genTags       int
	genPosts      int
	genComments   int
	genLikes      int
	genAvgTags    int
	genSeed       int64
	genDialect    string
	genNow        string
	genOut        string
	genReport     string
	genStats      bool
	genStrict     bool
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Generate the seed SQL script",
	Long: `Generate a deterministic, idempotent SQL script that clears the blog tables
and inserts users, categories, tags, posts, tag links, comments and likes.

Counts and the random seed come from the config file unless overridden by
flags. Running the command twice with the same seed and --now produces the
same file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := buildParams(cmd)
		if err != nil {
			return err
		}

		out := genOut
		if !cmd.Flags().Changed("out") {
			out = defaultOutput(params.Dialect)
		}

		start := time.Now()
		res, err := seeder.Generate(params)
		if err != nil {
			return fmt.Errorf("failed to generate seed data: %w", err)
		}

		for _, s := range res.Shortfalls() {
			logger.Logger.Warn("generated fewer rows than requested",
				zap.String("entity", s.Entity),
				zap.Int("requested", s.Requested),
				zap.Int("achieved", s.Achieved),
			)
		}
		if genStrict && len(res.Shortfalls()) > 0 {
			return fmt.Errorf("generation fell short: %s", res.Shortfalls()[0])
		}

		if err := res.WriteScript(out); err != nil {
			return err
		}
		logger.Logger.Debug("seed script written",
			zap.String("path", out),
			zap.Int("lines", len(res.Lines)),
			zap.Duration("elapsed", time.Since(start)),
		)

		var overlap *seeder.Overlap
		if genStats || genReport != "" {
			o := seeder.MeasureOverlap(res.Dataset, overlapSamples, params.Seed)
			overlap = &o
		}

		reportPath := genReport
		if reportPath == "" {
			reportPath = appConfig.Report
		}
		if reportPath != "" {
			if err := seeder.WriteReport(reportPath, res.Report(overlap)); err != nil {
				return err
			}
			color.Cyan("📄 Report written to %s", reportPath)
		}

		c := res.Counts
		color.Green("✅ Done. Wrote %s (users:%d, categories:%d, tags:%d, posts:%d, comments:%d, likes:%d, tag links:%d)",
			out, c.Users.Achieved, c.Categories.Achieved, c.Tags.Achieved, c.Posts.Achieved,
			c.Comments.Achieved, c.Likes.Achieved, c.TagLinks.Achieved)

		if genStats && overlap != nil {
			fmt.Printf("📊 Avg tags per post: %.2f\n", overlap.AvgTagsPerPost)
			fmt.Printf("📊 Pair overlap probability: %.3f\n", overlap.PairProbability)
			fmt.Printf("📊 Posts with a similar post: %.1f%%\n", overlap.Coverage*100)
		}
		return nil
	},
}

// buildParams starts from the config file and applies the flags that were
// set explicitly on the command line.
func buildParams(cmd *cobra.Command) (seeder.Params, error) {
	cfg := appConfig
	params := seeder.Params{
		Users:          cfg.Seed.Users,
		Categories:     cfg.Seed.Categories,
		Tags:           cfg.Seed.Tags,
		Posts:          cfg.Seed.Posts,
		Comments:       cfg.Seed.Comments,
		Likes:          cfg.Seed.Likes,
		AvgTagsPerPost: cfg.Seed.AvgTagsPerPost,
		Seed:           cfg.Seed.RandomSeed,
	}

	flags := cmd.Flags()
	intFlags := map[string]*int{
		"users":      &params.Users,
		"categories": &params.Categories,
		"tags":       &params.Tags,
		"posts":      &params.Posts,
		"comments":   &params.Comments,
		"likes":      &params.Likes,
		"avg-tags":   &params.AvgTagsPerPost,
	}
	flagValues := map[string]int{
		"users":      genUsers,
		"categories": genCategories,
		"tags":       genTags,
		"posts":      genPosts,
		"comments":   genComments,
		"likes":      genLikes,
		"avg-tags":   genAvgTags,
	}
	for name, target := range intFlags {
		if flags.Changed(name) {
			*target = flagValues[name]
		}
	}
	if flags.Changed("seed") {
		params.Seed = genSeed
	}

	dialectName := cfg.GetDialect()
	if flags.Changed("dialect") {
		dialectName = genDialect
	}
	dialect, err := seeder.ParseDialect(dialectName)
	if err != nil {
		return params, err
	}
	params.Dialect = dialect

	if genNow != "" {
		now, err := time.Parse(time.RFC3339, genNow)
		if err != nil {
			return params, fmt.Errorf("invalid --now value %q, expected RFC 3339: %w", genNow, err)
		}
		params.Now = now.UTC()
	}

	if err := params.Validate(); err != nil {
		return params, err
	}
	return params, nil
}

// defaultOutput uses the configured output path, or a per-dialect file name
// in the seed directory when none is configured. The sqlite file name that
// init writes counts as unconfigured, so other dialects never land in it.
func defaultOutput(dialect seeder.Dialect) string {
	if viper.IsSet("output") && appConfig.Output != config.DefaultOutput {
		return appConfig.Output
	}
	return filepath.Join("seed", fmt.Sprintf("blog_seed_%s.sql", dialect))
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntVar(&genUsers, "users", 1000, "Number of users")
	generateCmd.Flags().IntVar(&genCategories, "categories", 20, "Number of categories")
	generateCmd.Flags().IntVar(&genTags, "tags", 50, "Size of the tag pool")
	generateCmd.Flags().IntVar(&genPosts, "posts", 1000, "Number of posts")
	generateCmd.Flags().IntVar(&genComments, "comments", 1000, "Number of comments")
	generateCmd.Flags().IntVar(&genLikes, "likes", 1000, "Number of likes")
	generateCmd.Flags().IntVar(&genAvgTags, "avg-tags", 3, "Base number of tags per post")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 42, "Random seed")
	generateCmd.Flags().StringVar(&genDialect, "dialect", "", "SQL dialect: sqlite, postgres or mysql (default from config)")
	generateCmd.Flags().StringVar(&genNow, "now", "", "Reference time in RFC 3339 (default: current time)")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "", "Output file (default from config)")
	generateCmd.Flags().StringVar(&genReport, "report", "", "Write a YAML summary to this file")
	generateCmd.Flags().BoolVar(&genStats, "stats", false, "Print tag overlap statistics")
	generateCmd.Flags().BoolVar(&genStrict, "strict", false, "Fail when fewer rows than requested could be generated")
}
