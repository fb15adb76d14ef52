// Package cmd implements the command-line interface for the blood-donation
// event crawler.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/youngboyhey/blood-donation-helper-sub000/cmd/crawl"
	cmdscheduler "github.com/youngboyhey/blood-donation-helper-sub000/cmd/scheduler"
	cmdsources "github.com/youngboyhey/blood-donation-helper-sub000/cmd/sources"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/config"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug mode for all commands.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "blood-events",
		Short: "A blood-donation event crawler",
		Long: `Crawls institutional sites, social posts and image-search results for
upcoming blood-donation events and maintains a de-duplicated, geocoded
canonical record set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are available to Viper.
	_ = godotenv.Load()

	// Parse flags early so --config and --debug apply before config init.
	_ = rootCmd.ParseFlags(os.Args[1:])

	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug mode")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("blood-events version %s\n", Version)
		},
	})

	rootCmd.AddCommand(crawl.Command())
	rootCmd.AddCommand(cmdsources.Command())
	rootCmd.AddCommand(cmdscheduler.Command())
}

// initConfig reads in the config file and environment variables.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	// Environment variables take precedence over the file and defaults.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	config.SetDefaults()

	// The config file is optional: defaults plus environment cover a full
	// configuration.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config file not found: %v (using defaults and environment variables)\n", err)
	}

	if err := viper.BindPFlag("app.debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("failed to bind debug flag: %w", err)
	}
	if err := bindEnvVars(); err != nil {
		return err
	}
	return nil
}

// bindEnvVars maps well-known environment variables to config keys.
func bindEnvVars() error {
	bindings := map[string][]string{
		"app.environment":   {"APP_ENV"},
		"app.debug":         {"APP_DEBUG"},
		"logger.level":      {"LOG_LEVEL"},
		"logger.encoding":   {"LOG_FORMAT"},
		"database.host":     {"POSTGRES_HOST"},
		"database.port":     {"POSTGRES_PORT"},
		"database.user":     {"POSTGRES_USER"},
		"database.password": {"POSTGRES_PASSWORD"},
		"database.dbname":   {"POSTGRES_DB"},
		"vision.endpoint":   {"VISION_ENDPOINT"},
		"vision.api_key":    {"VISION_API_KEY"},
		"geocoder.email":    {"GEOCODER_EMAIL"},
	}
	for key, envs := range bindings {
		if err := viper.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}
