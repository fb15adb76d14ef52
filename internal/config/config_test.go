package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youngboyhey/blood-donation-helper-sub000/internal/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	config.SetDefaults()

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.DefaultNavigationTimeout, cfg.Crawler.NavigationTimeout)
	assert.Equal(t, config.DefaultDateWindowDays, cfg.Crawler.DateWindowDays)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, config.DefaultCronSchedule, cfg.Scheduler.Schedule)
	assert.Equal(t, 90*24*time.Hour, cfg.Crawler.DateWindow())
}

func TestLoadConfigOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	config.SetDefaults()
	viper.Set("crawler.navigation_timeout", "45s")
	viper.Set("crawler.sources_file", "sources.yml")
	viper.Set("database.host", "db.internal")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.Crawler.NavigationTimeout)
	assert.Equal(t, "sources.yml", cfg.Crawler.SourcesFile)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"valid", func(c *config.Config) {}, false},
		{"zero timeout", func(c *config.Config) { c.Crawler.NavigationTimeout = 0 }, true},
		{"zero window", func(c *config.Config) { c.Crawler.DateWindowDays = 0 }, true},
		{"missing db host", func(c *config.Config) { c.Database.Host = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Config{
				Crawler: config.CrawlerConfig{
					NavigationTimeout: config.DefaultNavigationTimeout,
					DateWindowDays:    config.DefaultDateWindowDays,
				},
				Database: config.DatabaseConfig{Host: "localhost", Port: "5432"},
			}
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
