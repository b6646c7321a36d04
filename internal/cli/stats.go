package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// headerStyle renders the stats header when stdout is a terminal.
var headerStyle = lipgloss.NewStyle().Bold(true) //nolint:gochecknoglobals // Style definition

// newStatsCmd creates the "stats" command: per-root entry counts and sizes.
func newStatsCmd(buildStore storeBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-root entry counts and sizes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := buildStore()
			if err != nil {
				return err
			}

			header := "root     entries  bytes"
			if isTerminal(os.Stdout) {
				header = headerStyle.Render(header)
			}
			cmd.Println(header)

			// Thousands separators keep large byte counts readable.
			printer := message.NewPrinter(language.English)
			for _, rs := range store.Stats() {
				cmd.Println(printer.Sprintf("%-8s %7d  %d", rs.Root.String(), rs.Entries, rs.SizeBytes))
			}
			return nil
		},
	}
}
