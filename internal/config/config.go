// Package config loads hoard configuration from a YAML file with
// environment-variable overrides, and resolves the default storage roots.
//
// Resolution order, strongest last applied by the CLI: defaults, config
// file, HOARD_* environment variables, command-line flags.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/rshade/hoard/internal/cache"
)

// Environment variable overrides.
const (
	// EnvPrimaryRoot overrides the primary storage root.
	EnvPrimaryRoot = "HOARD_PRIMARY_ROOT"

	// EnvLegacyRoot overrides the legacy fallback root.
	EnvLegacyRoot = "HOARD_LEGACY_ROOT"

	// EnvNamespace overrides the cache namespace.
	EnvNamespace = "HOARD_NAMESPACE"

	// EnvTTLSeconds overrides the default TTL in seconds.
	EnvTTLSeconds = "HOARD_TTL_SECONDS"

	// EnvLogLevel overrides the log level.
	EnvLogLevel = "HOARD_LOG_LEVEL"
)

// DefaultNamespace is the namespace used when none is configured.
const DefaultNamespace = "default"

// appDirName is the app-private directory under the home directory and the
// OS cache area.
const appDirName = "hoard"

// Config is the root configuration document.
type Config struct {
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

// CacheConfig configures the store.
type CacheConfig struct {
	// Namespace is the directory under each root holding records.
	Namespace string `yaml:"namespace"`

	// PrimaryRoot is the durable root receiving all writes. Empty means
	// the platform default (~/.hoard/cache).
	PrimaryRoot string `yaml:"primary_root"`

	// LegacyRoot is the read-only fallback root. Empty means the platform
	// default (the OS-managed user cache directory).
	LegacyRoot string `yaml:"legacy_root"`

	// TTLSeconds is the default TTL applied when a write specifies none.
	// Zero means never expires.
	TTLSeconds int `yaml:"ttl_seconds"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		Cache: CacheConfig{
			Namespace: DefaultNamespace,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (missing file
// is not an error), and environment overrides.
func Load(path string) (*Config, error) {
	cfg := New()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := ShallowMergeYAML(cfg, path); err != nil {
				return nil, err
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays HOARD_* environment variables onto the config.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvPrimaryRoot); v != "" {
		c.Cache.PrimaryRoot = v
	}
	if v := os.Getenv(EnvLegacyRoot); v != "" {
		c.Cache.LegacyRoot = v
	}
	if v := os.Getenv(EnvNamespace); v != "" {
		c.Cache.Namespace = v
	}
	if v := os.Getenv(EnvTTLSeconds); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil && ttl >= 0 {
			c.Cache.TTLSeconds = ttl
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

// Roots resolves the configured storage roots, filling platform defaults
// for unset values.
func (c *Config) Roots() cache.Roots {
	roots := cache.Roots{
		Primary: c.Cache.PrimaryRoot,
		Legacy:  c.Cache.LegacyRoot,
	}
	if roots.Primary == "" {
		roots.Primary = defaultPrimaryRoot()
	}
	if roots.Legacy == "" {
		roots.Legacy = defaultLegacyRoot()
	}
	return roots
}

// DefaultConfigPath returns ~/.hoard/config.yaml, or empty when the home
// directory cannot be determined.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "."+appDirName, "config.yaml")
}

// defaultPrimaryRoot is the durable, app-private persistent area.
func defaultPrimaryRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appDirName, "cache")
	}
	return filepath.Join(home, "."+appDirName, "cache")
}

// defaultLegacyRoot is the reclaimable, OS-managed cache area that older
// installations wrote to. Read-only fallback.
func defaultLegacyRoot() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appDirName)
}
