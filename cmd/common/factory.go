package common

import (
	"fmt"

	"github.com/youngboyhey/blood-donation-helper-sub000/internal/config"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/logger"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/sources"
)

// NewCommandDeps creates CommandDeps by loading config and creating the
// logger. This consolidates the initialization every command repeats.
func NewCommandDeps() (CommandDeps, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return CommandDeps{}, fmt.Errorf("load config: %w", err)
	}

	logCfg := cfg.Logger
	if cfg.App.Debug {
		logCfg.Level = logger.DebugLevel
		logCfg.Development = true
	}

	log, err := logger.New(&logCfg)
	if err != nil {
		return CommandDeps{}, fmt.Errorf("create logger: %w", err)
	}

	deps := CommandDeps{Logger: log, Config: cfg}
	if validateErr := deps.Validate(); validateErr != nil {
		return CommandDeps{}, fmt.Errorf("validate deps: %w", validateErr)
	}
	return deps, nil
}

// LoadSourceRegistry loads the source registry configured for the process.
func LoadSourceRegistry(deps CommandDeps) (*sources.Registry, error) {
	registry, err := sources.Load(deps.Config.Crawler.SourcesFile, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}
	return registry, nil
}
