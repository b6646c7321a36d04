package cache

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// FormatVersion is the on-disk format version stamped into the primary
// namespace directory. Bump the major version when the envelope contract
// changes incompatibly.
const FormatVersion = "1.0.0"

// manifestName is the per-namespace format stamp file.
const manifestName = ".hoard-format"

// formatConstraint is the range of stamp versions this build can read.
var formatConstraint = mustConstraint("^1.0.0")

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

// formatCompatible reports whether the root's format stamp, if any, is
// readable by this build. A missing stamp is compatible (roots written
// before stamping existed). An unparseable or out-of-range stamp makes the
// root behave as empty rather than risk misreading records. Every read
// path hits this check, so the warning is emitted once per root, not per
// call.
func (l *Locator) formatCompatible(root Root) bool {
	dir := l.Dir(root)
	if dir == "" {
		return false
	}

	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return true
	}

	ver, err := semver.NewVersion(strings.TrimSpace(string(data)))
	if err != nil {
		if !l.stampWarned[root] {
			l.stampWarned[root] = true
			l.logger.Warn().Err(err).Str("root", root.String()).Msg("unreadable cache format stamp")
		}
		return false
	}

	if !formatConstraint.Check(ver) {
		if !l.stampWarned[root] {
			l.stampWarned[root] = true
			l.logger.Warn().
				Str("root", root.String()).
				Str("format", ver.String()).
				Msg("incompatible cache format, treating root as empty")
		}
		return false
	}

	return true
}

// stampFormat writes the format stamp into the primary namespace directory.
// A compatible existing stamp is left alone; a missing, unparseable, or
// out-of-range one is replaced, so a root that was treated as empty on read
// becomes this build's format again on the next write. Best-effort; the
// stamp is advisory.
func (l *Locator) stampFormat() {
	dir := l.Dir(RootPrimary)
	path := filepath.Join(dir, manifestName)

	if data, err := os.ReadFile(path); err == nil {
		ver, parseErr := semver.NewVersion(strings.TrimSpace(string(data)))
		if parseErr == nil && formatConstraint.Check(ver) {
			return
		}
		l.logger.Warn().Str("root", RootPrimary.String()).Msg("replacing incompatible cache format stamp")
	}

	if err := os.WriteFile(path, []byte(FormatVersion+"\n"), 0o600); err != nil {
		l.logger.Warn().Err(err).Msg("could not write cache format stamp")
		return
	}
	l.stampWarned[RootPrimary] = false
}
