package commands

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"sigwatch/internal/plugins"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [plugin]",
	Short: "Runs a plugin, asks which one when none is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var entry plugins.Entry
		if len(args) == 1 {
			var ok bool
			entry, ok = plugins.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown plugin %q, see `sigwatch plugins`", args[0])
			}
		} else {
			var err error
			entry, err = selectPlugin(cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
		}

		plugin, err := entry.New(pluginDeps(cmd))
		if err != nil {
			return fmt.Errorf("create %s: %w", entry.ID, err)
		}
		return plugin.Execute(cmd.Context())
	},
}

// selectPlugin prints a numbered menu and reads the choice, either its
// number or its id.
func selectPlugin(in io.Reader, out io.Writer) (plugins.Entry, error) {
	entries := plugins.All()

	fmt.Fprintln(out, "Select plugin")
	for i, entry := range entries {
		fmt.Fprintf(out, "  %d) %s - %s\n", i+1, entry.ID, entry.Description)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return plugins.Entry{}, err
			}
			return plugins.Entry{}, fmt.Errorf("no plugin selected")
		}

		choice := strings.TrimSpace(scanner.Text())
		if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(entries) {
			return entries[n-1], nil
		}
		if entry, ok := plugins.Lookup(choice); ok {
			return entry, nil
		}
		fmt.Fprintf(out, "%q is not a plugin\n", choice)
	}
}
