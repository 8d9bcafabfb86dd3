package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	// FileName is the config file looked up in the working directory
	FileName  = "folio.yaml"
	envPrefix = "FOLIO"
)

// Config is the site configuration, read from folio.yaml and overridable
// through FOLIO_* environment variables (FOLIO_OUTPUT_DIR, FOLIO_WORKERS...)
type Config struct {
	SiteTitle string `mapstructure:"site_title"`
	BaseURL   string `mapstructure:"base_url"`
	Author    string `mapstructure:"author"`

	// ContentDir holds the blog/ and projects/ directories
	ContentDir string `mapstructure:"content_dir"`
	OutputDir  string `mapstructure:"output_dir"`

	// HighlightStyle is a chroma style name, empty disables highlighting
	HighlightStyle string `mapstructure:"highlight_style"`
	Backup         bool   `mapstructure:"backup"`
	Workers        int    `mapstructure:"workers"`
	MaxFiles       int    `mapstructure:"max_files"`
}

var Default = Config{
	SiteTitle:      "folio",
	ContentDir:     "content",
	OutputDir:      "public",
	HighlightStyle: "github",
	Backup:         true,
	Workers:        4,
	MaxFiles:       1000,
}

// Load reads the config file at path. With an empty path folio.yaml is
// looked up in the working directory, and a missing file leaves the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetDefault("site_title", Default.SiteTitle)
	v.SetDefault("base_url", Default.BaseURL)
	v.SetDefault("author", Default.Author)
	v.SetDefault("content_dir", Default.ContentDir)
	v.SetDefault("output_dir", Default.OutputDir)
	v.SetDefault("highlight_style", Default.HighlightStyle)
	v.SetDefault("backup", Default.Backup)
	v.SetDefault("workers", Default.Workers)
	v.SetDefault("max_files", Default.MaxFiles)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.ContentDir == "" {
		return fmt.Errorf("content_dir is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxFiles < 1 {
		return fmt.Errorf("max_files must be at least 1, got %d", c.MaxFiles)
	}
	return nil
}
