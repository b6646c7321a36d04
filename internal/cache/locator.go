package cache

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// recordExtension is the file extension used for cache records.
const recordExtension = ".json"

// Locator errors.
var (
	ErrInvalidKey       = errors.New("cache key cannot be empty")
	ErrInvalidNamespace = errors.New("cache namespace cannot be empty")
	ErrNoPrimaryRoot    = errors.New("primary root cannot be empty")
)

// Root identifies one of the two storage roots.
type Root int

const (
	// RootPrimary is the durable root that receives all writes.
	RootPrimary Root = iota

	// RootLegacy is the deprecated former storage location, retained for
	// read-only backward compatibility. It is never written to.
	RootLegacy
)

// String returns a human-readable name for the root.
func (r Root) String() string {
	if r == RootLegacy {
		return "legacy"
	}
	return "primary"
}

// Roots holds the two injected storage root paths. Legacy may be empty,
// meaning no fallback root is configured.
type Roots struct {
	Primary string
	Legacy  string
}

// Locator resolves cache keys to file paths under <root>/<namespace>/.
// Resolution is a pure function of key and root identity; directory
// creation happens only on the write path, so reads and deletes never
// materialize directories in the legacy root.
type Locator struct {
	roots     Roots
	namespace string
	logger    zerolog.Logger

	// stampWarned suppresses repeated format-stamp warnings per root.
	stampWarned [2]bool
}

// NewLocator builds a locator for the given roots and namespace.
func NewLocator(roots Roots, namespace string, logger zerolog.Logger) (*Locator, error) {
	if roots.Primary == "" {
		return nil, ErrNoPrimaryRoot
	}
	if namespace == "" {
		return nil, ErrInvalidNamespace
	}
	return &Locator{roots: roots, namespace: namespace, logger: logger}, nil
}

// Namespace returns the namespace this locator serves.
func (l *Locator) Namespace() string {
	return l.namespace
}

// Dir returns the namespace directory for the given root. Empty when the
// root is not configured.
func (l *Locator) Dir(root Root) string {
	base := l.roots.Primary
	if root == RootLegacy {
		base = l.roots.Legacy
	}
	if base == "" {
		return ""
	}
	return filepath.Join(base, l.namespace)
}

// Resolve maps a key to its file path in the given root. Resolution never
// touches the filesystem; writers create the namespace directory
// themselves.
func (l *Locator) Resolve(key string, root Root) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}

	dir := l.Dir(root)
	if dir == "" {
		return "", errors.New("root not configured")
	}

	path := filepath.Join(dir, key+recordExtension)

	// Keys with path separators or traversal sequences would escape the
	// namespace directory. Filesystem-safe keys are the caller's
	// responsibility; escaping ones are rejected outright.
	if filepath.Dir(path) != dir || !strings.HasPrefix(path, dir+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}

	return path, nil
}

// readRoots returns the roots in read order: primary first, legacy second.
// The first root containing a parseable envelope wins.
func (l *Locator) readRoots() []Root {
	if l.roots.Legacy == "" {
		return []Root{RootPrimary}
	}
	return []Root{RootPrimary, RootLegacy}
}

// ClearAll removes both namespace directories entirely. Best-effort: errors
// are logged, never raised to the caller.
func (l *Locator) ClearAll() {
	for _, root := range []Root{RootPrimary, RootLegacy} {
		dir := l.Dir(root)
		if dir == "" {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			l.logger.Warn().Err(err).Str("root", root.String()).Msg("could not clear cache directory")
		}
	}
}
