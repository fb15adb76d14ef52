// Package config provides configuration management for the crawler. Values
// come from a YAML config file, environment variables, and defaults, resolved
// through Viper in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/youngboyhey/blood-donation-helper-sub000/internal/logger"
)

// Default configuration values.
const (
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultNavigationTimeout = 30 * time.Second
	DefaultSettleDelay       = 2 * time.Second
	DefaultRetryDelay        = 2 * time.Second
	DefaultDateWindowDays    = 90
	DefaultGeocoderDelay     = 1 * time.Second
	DefaultCronSchedule      = "0 6 * * *"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// CrawlerConfig holds page-fetching and pipeline settings.
type CrawlerConfig struct {
	// UserAgent is sent by both the browser and the HTTP fetcher.
	UserAgent string `mapstructure:"user_agent"`
	// NavigationTimeout bounds a single page navigation.
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	// SettleDelay is the post-ready wait before the DOM is read.
	SettleDelay time.Duration `mapstructure:"settle_delay"`
	// RetryDelay is the wait before the single per-page retry.
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	// DateWindowDays bounds the persisted window loaded for reconciliation.
	DateWindowDays int `mapstructure:"date_window_days"`
	// SourcesFile is the path to the sources YAML; empty uses built-ins.
	SourcesFile string `mapstructure:"sources_file"`
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// GeocoderConfig holds geocoding client settings.
type GeocoderConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Email   string        `mapstructure:"email"`
	Delay   time.Duration `mapstructure:"delay"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// VisionConfig holds vision extraction service settings.
type VisionConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SchedulerConfig holds periodic-crawl settings.
type SchedulerConfig struct {
	// Schedule is a standard 5-field cron expression.
	Schedule string `mapstructure:"schedule"`
}

// Config is the application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logger    logger.Config   `mapstructure:"logger"`
	Crawler   CrawlerConfig   `mapstructure:"crawler"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Geocoder  GeocoderConfig  `mapstructure:"geocoder"`
	Vision    VisionConfig    `mapstructure:"vision"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoadConfig unmarshals the resolved Viper state into a typed Config.
// SetDefaults and the config-file read must have happened first.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults registers default values with Viper.
func SetDefaults() {
	viper.SetDefault("app.environment", "production")
	viper.SetDefault("app.debug", false)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")

	viper.SetDefault("crawler.user_agent", DefaultUserAgent)
	viper.SetDefault("crawler.navigation_timeout", DefaultNavigationTimeout)
	viper.SetDefault("crawler.settle_delay", DefaultSettleDelay)
	viper.SetDefault("crawler.retry_delay", DefaultRetryDelay)
	viper.SetDefault("crawler.date_window_days", DefaultDateWindowDays)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.dbname", "blood_events")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("geocoder.delay", DefaultGeocoderDelay)

	viper.SetDefault("scheduler.schedule", DefaultCronSchedule)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Crawler.NavigationTimeout <= 0 {
		return errors.New("crawler.navigation_timeout must be positive")
	}
	if c.Crawler.DateWindowDays <= 0 {
		return errors.New("crawler.date_window_days must be positive")
	}
	if c.Database.Host == "" || c.Database.Port == "" {
		return errors.New("database host and port are required")
	}
	return nil
}

// DateWindow returns the reconciliation window as a duration.
func (c *CrawlerConfig) DateWindow() time.Duration {
	return time.Duration(c.DateWindowDays) * 24 * time.Hour
}
