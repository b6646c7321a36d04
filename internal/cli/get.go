package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// newGetCmd creates the "get" command: print the stored value for a key.
func newGetCmd(buildStore storeBuilder) *cobra.Command {
	var showExpiry bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Read the value stored under a key",
		Long: "Read the value stored under a key, trying the primary root first and " +
			"the legacy root second. Expired records are evicted and reported absent.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			store, err := buildStore()
			if err != nil {
				return err
			}

			env, ok := store.Load(key)
			if !ok {
				return fmt.Errorf("key %q not found", key)
			}

			data, err := json.MarshalIndent(env.Storage, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(data))

			if showExpiry {
				if env.Expires == nil {
					cmd.PrintErrln("expires: never")
				} else {
					cmd.PrintErrf("expires: %s\n", time.Unix(*env.Expires, 0).Format(time.RFC3339))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showExpiry, "show-expiry", false, "print the record's expiry deadline to stderr")

	return cmd
}
