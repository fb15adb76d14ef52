package sources

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/youngboyhey/blood-donation-helper-sub000/cmd/common"
	internalsources "github.com/youngboyhey/blood-donation-helper-sub000/internal/sources"
)

// newListCommand creates the list subcommand.
func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configured sources",
		Long:  `List the event sources configured in the system.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			registry, err := common.LoadSourceRegistry(deps)
			if err != nil {
				return err
			}

			list := registry.All()
			if len(list) == 0 {
				deps.Logger.Info("No sources configured")
				return nil
			}
			renderTable(list)
			return nil
		},
	}
}

// renderTable formats and displays the sources in a table.
func renderTable(list []internalsources.Source) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Kind", "Name", "City", "Entry URL", "JS"})

	for _, src := range list {
		t.AppendRow(table.Row{
			src.ID, src.Kind, src.Name, src.City, src.EntryURL, src.RequiresJS,
		})
	}
	t.Render()
}
