package commands

import (
	"sigwatch/internal/plugins"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(pluginsCmd)
}

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Lists the plugins that can be run.",
	Run: func(cmd *cobra.Command, args []string) {
		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Plugin", "Description"})
		for _, entry := range plugins.All() {
			t.AppendRow(table.Row{entry.ID, entry.Description})
		}
		t.Render()
	},
}
