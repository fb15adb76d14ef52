// Package sources implements the command-line interface for inspecting the
// configured event sources.
package sources

import (
	"github.com/spf13/cobra"
)

// Command returns the sources command with its subcommands.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Manage event sources",
		Long:  `Inspect the event sources the crawler is configured to visit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newListCommand())
	return cmd
}
