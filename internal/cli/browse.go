package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/hoard/internal/tui"
)

// newBrowseCmd creates the "browse" command: interactive key browser.
func newBrowseCmd(buildStore storeBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse cached keys interactively",
		RunE: func(_ *cobra.Command, _ []string) error {
			if !isTerminal(os.Stdout) {
				return errors.New("browse requires an interactive terminal")
			}

			store, err := buildStore()
			if err != nil {
				return err
			}

			return tui.Browse(store)
		},
	}
}
