// Package scheduler implements the scheduler command, running the crawl
// pipeline periodically on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/youngboyhey/blood-donation-helper-sub000/cmd/common"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/logger"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/pipeline"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/sources"
)

// Command returns the scheduler command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "scheduler",
		Short: "Run periodic crawls on a cron schedule",
		Long: `Start the scheduler to crawl all configured sources periodically.
The scheduler runs continuously until interrupted with Ctrl+C.`,
		RunE: runScheduler,
	}
}

func runScheduler(cmd *cobra.Command, _ []string) error {
	deps, err := common.NewCommandDeps()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	registry, err := common.LoadSourceRegistry(deps)
	if err != nil {
		return err
	}

	result, err := common.CreateRunner(deps)
	if err != nil {
		return err
	}
	defer result.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	schedule := deps.Config.Scheduler.Schedule
	log := deps.Logger.WithComponent("scheduler")

	// Standard 5-field cron parser (minute hour day month weekday).
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))

	job := crawlJob{
		runner:   result.Runner,
		registry: registry,
		log:      log,
		ctx:      ctx,
	}
	if _, addErr := c.AddJob(schedule, job); addErr != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, addErr)
	}

	log.Info("Scheduler started", "schedule", schedule)
	c.Start()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	stopCtx := c.Stop()
	<-stopCtx.Done()
	log.Info("Scheduler stopped")
	return nil
}

// crawlJob runs one full crawl of every configured source.
type crawlJob struct {
	runner   *pipeline.Runner
	registry *sources.Registry
	log      logger.Interface
	ctx      context.Context
}

// Run implements cron.Job.
func (j crawlJob) Run() {
	started := time.Now()
	j.log.Info("Scheduled crawl starting")

	summaries := j.runner.CrawlAll(j.ctx, j.registry.All(), started)

	var inserted, replaced, failed int
	for _, s := range summaries {
		inserted += s.Inserted
		replaced += s.Replaced
		failed += s.Failed
	}
	j.log.WithDuration(time.Since(started)).Info("Scheduled crawl finished",
		"sources", len(summaries), "inserted", inserted, "replaced", replaced, "failed", failed)
}
