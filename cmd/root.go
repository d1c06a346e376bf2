package cmd

import (
	"fmt"
	"os"

	"github.com/Rana718/blogseed/internal/config"
	"github.com/Rana718/blogseed/internal/logger"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	Version = "1.0.0"

	appConfig *config.Config
)

func showBanner() {
	greenColor := color.New(color.FgGreen, color.Bold)

	banner := []string{
		"╔══════════════════════════════════════════════╗",
		"║   ██████╗ ██╗      ██████╗  ██████╗          ║",
		"║   ██╔══██╗██║     ██╔═══██╗██╔════╝          ║",
		"║   ██████╔╝██║     ██║   ██║██║  ███╗         ║",
		"║   ██╔══██╗██║     ██║   ██║██║   ██║         ║",
		"║   ██████╔╝███████╗╚██████╔╝╚██████╔╝  seed   ║",
		"║   ╚═════╝ ╚══════╝ ╚═════╝  ╚═════╝          ║",
		"║                                              ║",
		"║     🌱 Deterministic blog seed data 🌱       ║",
		"╚══════════════════════════════════════════════╝",
	}

	for _, line := range banner {
		greenColor.Println(line)
	}

	fmt.Print("               ")
	color.New(color.FgCyan, color.Bold).Print("Version: ")
	color.New(color.FgYellow, color.Bold).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "blogseed",
	Short: "Generate and load deterministic seed data for a blog database",
	Long: `
blogseed writes an idempotent SQL script that fills a blog database with
users, categories, tags, posts, tag links, comments and likes. The same seed
always produces the same script.

Database Support:
- SQLite (default)
- PostgreSQL
- MySQL`,

	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,

	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("blogseed version %s\n", Version)
			return
		}

		showBanner()
		fmt.Println()
		cmd.Help()
	},
}

func Execute() error {
	defer logger.Sync()
	return rootCmd.Execute()
}

// setup loads the configuration and starts the logger for every command.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := logger.Init(cfg.Log); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if used := viper.ConfigFileUsed(); used != "" {
		logger.Logger.Debug("config loaded", zap.String("file", used))
	}

	appConfig = cfg
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.ConfigFileName+")")
	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env")
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("blogseed.config")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "⚠️  Could not read config %s: %v\n", cfgFile, err)
		}
	}
}
