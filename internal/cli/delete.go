package cli

import (
	"github.com/spf13/cobra"
)

// newDeleteCmd creates the "delete" command: remove a key from both roots.
func newDeleteCmd(buildStore storeBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove the record for a key from both roots",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			store, err := buildStore()
			if err != nil {
				return err
			}

			// Best-effort on both roots; never fails the caller.
			store.Delete(args[0])
			logger.Info().Str("key", args[0]).Msg("record deleted")
			return nil
		},
	}
}

// newPurgeCmd creates the "purge" command: sweep expired records.
func newPurgeCmd(buildStore storeBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove expired records from both roots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := buildStore()
			if err != nil {
				return err
			}

			removed := store.Purge()
			cmd.Printf("purged %d expired record(s)\n", removed)
			return nil
		},
	}
}

// newClearCmd creates the "clear" command: drop both roots entirely.
func newClearCmd(buildStore storeBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all records from both roots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := buildStore()
			if err != nil {
				return err
			}

			store.ClearAll()
			cmd.Println("cache cleared")
			return nil
		},
	}
}
