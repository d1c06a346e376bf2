package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const ConfigFileName = "blogseed.config.json"

// DefaultOutput is the script path written by init. generate treats it as
// "unset" for non-sqlite dialects.
var DefaultOutput = filepath.Join("seed", "blog_seed_sqlite.sql")

type Config struct {
	Version  string   `json:"version" mapstructure:"version"`
	Output   string   `json:"output" mapstructure:"output"`
	Report   string   `json:"report,omitempty" mapstructure:"report"`
	Seed     Seed     `json:"seed" mapstructure:"seed"`
	Database Database `json:"database" mapstructure:"database"`
	Log      Log      `json:"log" mapstructure:"log"`
}

type Seed struct {
	Users          int    `json:"users" mapstructure:"users"`
	Categories     int    `json:"categories" mapstructure:"categories"`
	Tags           int    `json:"tags" mapstructure:"tags"`
	Posts          int    `json:"posts" mapstructure:"posts"`
	Comments       int    `json:"comments" mapstructure:"comments"`
	Likes          int    `json:"likes" mapstructure:"likes"`
	AvgTagsPerPost int    `json:"avg_tags_per_post" mapstructure:"avg_tags_per_post"`
	RandomSeed     int64  `json:"random_seed" mapstructure:"random_seed"`
	Dialect        string `json:"dialect,omitempty" mapstructure:"dialect"` // empty: follow database.provider
}

type Database struct {
	Provider string `json:"provider" mapstructure:"provider"`
	URLEnv   string `json:"url_env" mapstructure:"url_env"`
}

type Log struct {
	Level      string `json:"level" mapstructure:"level"`
	Path       string `json:"path,omitempty" mapstructure:"path"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" mapstructure:"max_size_mb"`
	MaxBackups int    `json:"max_backups,omitempty" mapstructure:"max_backups"`
	MaxAgeDays int    `json:"max_age_days,omitempty" mapstructure:"max_age_days"`
	Compress   bool   `json:"compress,omitempty" mapstructure:"compress"`
}

func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults(func(string) bool { return false })
	return cfg
}

func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults(viper.IsSet)
	return &cfg, nil
}

// applyDefaults fills unset values. isSet tells explicit zeros (e.g.
// "comments": 0) apart from missing keys.
func (c *Config) applyDefaults(isSet func(string) bool) {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}

	intDefaults := []struct {
		key   string
		value *int
		def   int
	}{
		{"seed.users", &c.Seed.Users, 1000},
		{"seed.categories", &c.Seed.Categories, 20},
		{"seed.tags", &c.Seed.Tags, 50},
		{"seed.posts", &c.Seed.Posts, 1000},
		{"seed.comments", &c.Seed.Comments, 1000},
		{"seed.likes", &c.Seed.Likes, 1000},
		{"seed.avg_tags_per_post", &c.Seed.AvgTagsPerPost, 3},
	}
	for _, d := range intDefaults {
		if *d.value == 0 && !isSet(d.key) {
			*d.value = d.def
		}
	}
	if c.Seed.RandomSeed == 0 && !isSet("seed.random_seed") {
		c.Seed.RandomSeed = 42
	}

	if c.Database.Provider == "" {
		c.Database.Provider = "sqlite"
	}
	if c.Database.URLEnv == "" {
		c.Database.URLEnv = "DATABASE_URL"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}

// GetDialect returns the SQL dialect of the generated script: seed.dialect
// when set, otherwise the database provider.
func (c *Config) GetDialect() string {
	if c.Seed.Dialect != "" {
		return c.Seed.Dialect
	}
	return c.Database.Provider
}

func (c *Config) Validate() error {
	supportedProviders := []string{"postgresql", "postgres", "mysql", "sqlite", "sqlite3"}
	if !contains(supportedProviders, c.Database.Provider) {
		return fmt.Errorf("unsupported database provider: %s. Supported providers: %v", c.Database.Provider, supportedProviders)
	}
	if c.Seed.Dialect != "" && !contains(supportedProviders, c.Seed.Dialect) {
		return fmt.Errorf("unsupported seed dialect: %s. Supported dialects: %v", c.Seed.Dialect, supportedProviders)
	}

	if c.Output == "" {
		return fmt.Errorf("output cannot be empty")
	}

	supportedLevels := []string{"debug", "info", "warn", "error"}
	if !contains(supportedLevels, c.Log.Level) {
		return fmt.Errorf("unsupported log level: %s. Supported levels: %v", c.Log.Level, supportedLevels)
	}

	return nil
}

// InitializeProject writes the default config file and the seed directory
// into the working directory. It refuses to overwrite an existing config.
func InitializeProject() error {
	if IsInitialized() {
		return fmt.Errorf("%s already exists", ConfigFileName)
	}

	cfg := DefaultConfig()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if dir := filepath.Dir(cfg.Output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(ConfigFileName, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ConfigFileName, err)
	}
	return nil
}

func IsInitialized() bool {
	_, err := os.Stat(ConfigFileName)
	return err == nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
