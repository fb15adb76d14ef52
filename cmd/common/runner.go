package common

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/youngboyhey/blood-donation-helper-sub000/internal/fetch"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/geocode"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/pipeline"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/storage"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/vision"
)

// RunnerResult bundles a wired pipeline runner with the resources it holds.
// Close releases the browser and the database connection.
type RunnerResult struct {
	Runner  *pipeline.Runner
	browser *fetch.Browser
	db      *sqlx.DB
}

// Close releases the runner's resources.
func (r *RunnerResult) Close() {
	if r.browser != nil {
		r.browser.Close()
	}
	if r.db != nil {
		_ = r.db.Close()
	}
}

// CreateRunner wires the full pipeline from configuration: Postgres store,
// browser allocator, HTTP fetcher, geocoder, and vision client.
func CreateRunner(deps CommandDeps) (*RunnerResult, error) {
	cfg := deps.Config

	db, err := storage.NewPostgresConnection(storage.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	browser := fetch.NewBrowser(cfg.Crawler.UserAgent, deps.Logger)

	geocoder := geocode.New(geocode.Config{
		BaseURL:   cfg.Geocoder.BaseURL,
		UserAgent: cfg.Crawler.UserAgent,
		Email:     cfg.Geocoder.Email,
		Delay:     cfg.Geocoder.Delay,
		Timeout:   cfg.Geocoder.Timeout,
	}, deps.Logger)

	visionClient := vision.NewHTTPClient(vision.Config{
		Endpoint: cfg.Vision.Endpoint,
		APIKey:   cfg.Vision.APIKey,
		Timeout:  cfg.Vision.Timeout,
	}, deps.Logger)

	runner := pipeline.New(pipeline.Deps{
		Sessions: pipeline.BrowserOpener{Browser: browser},
		Static:   fetch.NewHTTPFetcher(cfg.Crawler.UserAgent, deps.Logger),
		Store:    storage.NewEventRepository(db),
		Geocoder: geocoder,
		Vision:   visionClient,
		Logger:   deps.Logger,
	}, pipeline.Config{
		FetchOptions: fetch.Options{
			Timeout:     cfg.Crawler.NavigationTimeout,
			SettleDelay: cfg.Crawler.SettleDelay,
			RetryDelay:  cfg.Crawler.RetryDelay,
		},
		DateWindow: cfg.Crawler.DateWindow(),
	})

	return &RunnerResult{Runner: runner, browser: browser, db: db}, nil
}
