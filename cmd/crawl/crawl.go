// Package crawl implements the crawl command, running the acquisition
// pipeline for one source or all of them.
package crawl

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/youngboyhey/blood-donation-helper-sub000/cmd/common"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/domain"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/sources"
)

// Command returns the crawl command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl [source]",
		Short: "Crawl sources for blood-donation events",
		Long: `Crawl the configured sources for upcoming blood-donation events.
With a source id argument only that source is crawled; without one, every
configured source is crawled in order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCrawl,
	}
}

func runCrawl(cmd *cobra.Command, args []string) error {
	deps, err := common.NewCommandDeps()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	registry, err := common.LoadSourceRegistry(deps)
	if err != nil {
		return err
	}

	list, err := selectSources(registry, args)
	if err != nil {
		return err
	}

	result, err := common.CreateRunner(deps)
	if err != nil {
		return err
	}
	defer result.Close()

	deps.Logger.Info("Starting crawl", "sources", len(list))
	summaries := result.Runner.CrawlAll(cmd.Context(), list, time.Now())

	renderSummaries(summaries)
	return nil
}

// selectSources picks the sources to crawl from the optional argument.
func selectSources(registry *sources.Registry, args []string) ([]sources.Source, error) {
	if len(args) == 0 {
		return registry.All(), nil
	}
	src := registry.FindByID(args[0])
	if src == nil {
		return nil, fmt.Errorf("unknown source %q", args[0])
	}
	return []sources.Source{*src}, nil
}

// renderSummaries prints the per-source crawl counters.
func renderSummaries(summaries []domain.CrawlSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Source", "Discovered", "Extracted", "Merged", "Inserted", "Replaced", "Failed"})

	var total domain.CrawlSummary
	for _, s := range summaries {
		total.Add(s)
		t.AppendRow(table.Row{
			s.SourceID, s.Discovered, s.Extracted, s.Merged, s.Inserted, s.Replaced, s.Failed,
		})
	}
	t.AppendFooter(table.Row{
		"total", total.Discovered, total.Extracted, total.Merged, total.Inserted, total.Replaced, total.Failed,
	})
	t.Render()
}
