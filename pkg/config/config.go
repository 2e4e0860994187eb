package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/user/imagewatch/internal/repository"
)

// Config holds the application configuration.
type Config struct {
	DBDriver string `mapstructure:"DB_DRIVER"`
	DBPath   string `mapstructure:"DB_PATH"`

	ImagesDir     string `mapstructure:"IMAGES_DIR"`
	AssetS3Bucket string `mapstructure:"ASSET_S3_BUCKET"`
	AssetS3Prefix string `mapstructure:"ASSET_S3_PREFIX"`
	AWSRegion     string `mapstructure:"AWS_REGION"`

	ReportsDir         string `mapstructure:"REPORTS_DIR"`
	BaseURL            string `mapstructure:"BASE_URL"`
	EmailTo            string `mapstructure:"EMAIL_TO"`
	EmailFrom          string `mapstructure:"EMAIL_FROM"`
	AWSAccessKeyID     string `mapstructure:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `mapstructure:"AWS_SECRET_ACCESS_KEY"`

	SourcesFile string `mapstructure:"SOURCES_FILE"`

	FetchTimeout        time.Duration `mapstructure:"FETCH_TIMEOUT"`
	FetchRateLimit      float64       `mapstructure:"FETCH_RATE_LIMIT"`
	UserAgent           string        `mapstructure:"USER_AGENT"`
	RenderJS            bool          `mapstructure:"RENDER_JS"`
	SourceConcurrency   int           `mapstructure:"SOURCE_CONCURRENCY"`
	DownloadConcurrency int           `mapstructure:"DOWNLOAD_CONCURRENCY"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	RunLockTTL    time.Duration `mapstructure:"RUN_LOCK_TTL"`

	PushgatewayURL string `mapstructure:"PUSHGATEWAY_URL"`
	Schedule       string `mapstructure:"SCHEDULE"`
	ServerPort     string `mapstructure:"SERVER_PORT"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

var defaults = map[string]any{
	"DB_DRIVER":             "sqlite3",
	"DB_PATH":               "",
	"IMAGES_DIR":            "images",
	"ASSET_S3_BUCKET":       "",
	"ASSET_S3_PREFIX":       "",
	"AWS_REGION":            "us-east-1",
	"REPORTS_DIR":           "",
	"BASE_URL":              "../",
	"EMAIL_TO":              "",
	"EMAIL_FROM":            "",
	"AWS_ACCESS_KEY_ID":     "",
	"AWS_SECRET_ACCESS_KEY": "",
	"SOURCES_FILE":          "",
	"FETCH_TIMEOUT":         "10s",
	"FETCH_RATE_LIMIT":      5.0,
	"USER_AGENT":            "",
	"RENDER_JS":             false,
	"SOURCE_CONCURRENCY":    4,
	"DOWNLOAD_CONCURRENCY":  8,
	"REDIS_ADDR":            "",
	"REDIS_PASSWORD":        "",
	"REDIS_DB":              0,
	"RUN_LOCK_TTL":          "30m",
	"PUSHGATEWAY_URL":       "",
	"SCHEDULE":              "0 * * * *",
	"SERVER_PORT":           "8080",
	"LOG_LEVEL":             "info",
	"LOG_FORMAT":            "json",
}

// Load reads configuration from envFile (if it exists) and the environment.
// Environment variables win over the file.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: failed to read %s: %w", repository.ErrConfiguration, envFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to decode configuration: %w", repository.ErrConfiguration, err)
	}
	return &cfg, nil
}

// ArtifactEnabled reports whether reports are written to REPORTS_DIR.
func (c *Config) ArtifactEnabled() bool {
	return c.ReportsDir != ""
}

// NotificationEnabled reports whether reports are mailed through SES.
func (c *Config) NotificationEnabled() bool {
	return c.EmailTo != "" && c.EmailFrom != "" && c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != ""
}

// Validate checks the settings every command needs before touching the store.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("%w: DB_PATH is required", repository.ErrConfiguration)
	}
	switch c.DBDriver {
	case "sqlite3", "pgx":
	default:
		return fmt.Errorf("%w: unsupported DB_DRIVER %q", repository.ErrConfiguration, c.DBDriver)
	}
	if c.SourceConcurrency <= 0 || c.DownloadConcurrency <= 0 {
		return fmt.Errorf("%w: concurrency settings must be positive", repository.ErrConfiguration)
	}
	return nil
}

// ValidateRun additionally requires at least one report target.
func (c *Config) ValidateRun() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !c.ArtifactEnabled() && !c.NotificationEnabled() {
		return fmt.Errorf("%w: no report target enabled; set REPORTS_DIR or the EMAIL_*/AWS_* variables", repository.ErrConfiguration)
	}
	return nil
}
