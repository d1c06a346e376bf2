package cmd

import (
	"fmt"

	"github.com/Rana718/blogseed/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a blogseed config file in the current directory",
	Long: `Write ` + config.ConfigFileName + ` with the default entity counts, seed
and database settings, and create the seed output directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.InitializeProject(); err != nil {
			return err
		}

		color.Green("✅ Created %s", config.ConfigFileName)
		fmt.Println()
		color.Cyan("Next steps:")
		fmt.Println("  1. Set DATABASE_URL in .env (e.g. sqlite://./db.sqlite3)")
		fmt.Println("  2. blogseed generate")
		fmt.Println("  3. blogseed load")
		fmt.Println("  4. blogseed check")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
