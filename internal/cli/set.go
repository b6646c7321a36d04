package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/hoard/internal/cache"
)

// newSetCmd creates the "set" command: store a JSON value under a key.
func newSetCmd(buildStore storeBuilder, defaultTTL func() int) *cobra.Command {
	var (
		ttlFlag       string
		expiresAtFlag string
	)

	cmd := &cobra.Command{
		Use:   "set <key> <json-value>",
		Short: "Store a value under a key",
		Long: "Store a JSON value under a key in the primary root. " +
			"Pass '-' as the value to read it from stdin.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, rawValue := args[0], args[1]

			if rawValue == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading value from stdin: %w", err)
				}
				rawValue = string(data)
			}

			var value cache.Value
			if err := json.Unmarshal([]byte(rawValue), &value); err != nil {
				return fmt.Errorf("value is not valid JSON: %w", err)
			}

			expiry, err := resolveExpiry(ttlFlag, expiresAtFlag, defaultTTL())
			if err != nil {
				return err
			}

			store, err := buildStore()
			if err != nil {
				return err
			}

			if err := store.Write(key, value, expiry); err != nil {
				return err
			}

			logger.Info().Str("key", key).Msg("value stored")
			return nil
		},
	}

	cmd.Flags().StringVar(&ttlFlag, "ttl", "", `time-to-live as a duration, e.g. "2h45m" (default from config; "0" = never)`)
	cmd.Flags().StringVar(&expiresAtFlag, "expires-at", "", "absolute expiry as an RFC3339 timestamp (overrides --ttl)")

	return cmd
}

// resolveExpiry turns the set command's flags into an expiry spec. Flag
// precedence: --expires-at, then --ttl, then the configured default TTL.
func resolveExpiry(ttlFlag, expiresAtFlag string, defaultTTLSeconds int) (cache.Expiry, error) {
	if expiresAtFlag != "" {
		at, err := time.Parse(time.RFC3339, expiresAtFlag)
		if err != nil {
			return cache.Expiry{}, fmt.Errorf("invalid --expires-at: %w", err)
		}
		return cache.ExpiresAt(at), nil
	}

	if ttlFlag != "" {
		if ttlFlag == "0" {
			return cache.Never(), nil
		}
		d, err := time.ParseDuration(ttlFlag)
		if err != nil {
			return cache.Expiry{}, fmt.Errorf("invalid --ttl: %w", err)
		}
		return cache.ExpiresIn(d), nil
	}

	if defaultTTLSeconds > 0 {
		return cache.ExpiresIn(time.Duration(defaultTTLSeconds) * time.Second), nil
	}
	return cache.Never(), nil
}
