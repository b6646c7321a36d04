// Package cli implements the hoard command-line surface on top of the cache
// engine: set/get/delete per key, purge/clear maintenance, stats, and an
// interactive browser.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/hoard/internal/cache"
	"github.com/rshade/hoard/internal/config"
	"github.com/rshade/hoard/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// storeBuilder constructs the cache store after configuration has been
// resolved in PersistentPreRunE.
type storeBuilder func() (*cache.Store, error)

// NewRootCmd creates the root Cobra command for the hoard CLI.
// It wires up configuration loading, logging, and the subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var (
		cfg       *config.Config
		logResult *logging.Result
	)

	cmd := &cobra.Command{
		Use:          "hoard",
		Short:        "Local persistent key-value cache",
		Long:         "Hoard: a per-process persistent key-value cache with TTL expiry and typed retrieval",
		Version:      ver,
		Example:      rootCmdExample,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			if configPath == "" {
				configPath = config.DefaultConfigPath()
			}

			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded

			if ns, _ := cmd.Flags().GetString("namespace"); ns != "" {
				cfg.Cache.Namespace = ns
			}
			if root, _ := cmd.Flags().GetString("primary-root"); root != "" {
				cfg.Cache.PrimaryRoot = root
			}
			if root, _ := cmd.Flags().GetString("legacy-root"); root != "" {
				cfg.Cache.LegacyRoot = root
			}

			loggingCfg := logging.Config{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				File:   cfg.Logging.File,
			}
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				loggingCfg.Level = "debug"
				loggingCfg.File = ""
			}

			logResult = logging.New(loggingCfg)
			logger = logging.ComponentLogger(logResult.Logger, "cli")

			ctx := logging.ContextWithTraceID(cmd.Context(), logging.NewTraceID())
			ctx = logger.WithContext(ctx)
			cmd.SetContext(ctx)

			logger.Debug().Str("command", cmd.Name()).Msg("command started")
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if logResult != nil {
				return logResult.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().String("config", "", "config file path (default ~/.hoard/config.yaml)")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("namespace", "", "cache namespace (default from config)")
	cmd.PersistentFlags().String("primary-root", "", "primary storage root (default ~/.hoard/cache)")
	cmd.PersistentFlags().String("legacy-root", "", "legacy read-only storage root")

	buildStore := func() (*cache.Store, error) {
		storeLogger := logging.ComponentLogger(logResult.Logger, "cache")
		return cache.New(cache.Options{
			Roots:     cfg.Roots(),
			Namespace: cfg.Cache.Namespace,
			Logger:    &storeLogger,
		})
	}
	defaultTTL := func() int {
		return cfg.Cache.TTLSeconds
	}

	cmd.AddCommand(
		newSetCmd(buildStore, defaultTTL),
		newGetCmd(buildStore),
		newDeleteCmd(buildStore),
		newPurgeCmd(buildStore),
		newClearCmd(buildStore),
		newStatsCmd(buildStore),
		newBrowseCmd(buildStore),
	)

	return cmd
}

const rootCmdExample = `  # Store a value for two hours
  hoard set user '{"name":"Ann","age":30}' --ttl 2h

  # Read it back
  hoard get user

  # Sweep expired records from both roots
  hoard purge

  # Inspect per-root entry counts and sizes
  hoard stats

  # Browse keys interactively
  hoard browse`
