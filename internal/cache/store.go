package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrNotEncodable indicates a write aborted because the value cannot be
// represented in the wire format. Nothing is written and any prior record
// for the key is left untouched.
var ErrNotEncodable = errors.New("value not encodable")

// Store is the cache engine handle. It holds both storage roots and is
// passed to every operation; there is no hidden global state.
//
// Calls are synchronous and single-process. Individual writes are atomic
// (temp file + rename) so a concurrent reader never observes a partial
// record, but read-modify-write sequences on the same key are the caller's
// responsibility to serialize.
type Store struct {
	locator *Locator
	logger  zerolog.Logger
	now     func() time.Time
}

// Options configures a Store.
type Options struct {
	// Roots are the injected storage roots. Primary is required.
	Roots Roots

	// Namespace is the directory under each root holding this store's
	// records.
	Namespace string

	// Logger receives diagnostics. Defaults to a disabled logger.
	Logger *zerolog.Logger

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// New builds a Store from the given options.
func New(opts Options) (*Store, error) {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	locator, err := NewLocator(opts.Roots, opts.Namespace, logger)
	if err != nil {
		return nil, err
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Store{
		locator: locator,
		logger:  logger,
		now:     clock,
	}, nil
}

// Locator exposes the store's path resolution, mainly for diagnostics.
func (s *Store) Locator() *Locator {
	return s.locator
}

// Write stores a value under the key with the given expiry. Relative expiry
// is resolved to an absolute deadline now, at write time. The envelope is
// validated against the wire format before anything touches disk; on
// validation failure the write aborts with ErrNotEncodable and any prior
// record for the key is left untouched.
func (s *Store) Write(key string, value Value, expiry Expiry) error {
	env := Envelope{
		Expires: expiry.deadline(s.now()),
		Storage: value,
	}

	// All-or-nothing: encode the whole envelope before touching disk.
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotEncodable, err)
	}

	path, err := s.locator.Resolve(key, RootPrimary)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	s.locator.stampFormat()

	// Temp file + rename keeps concurrent readers from ever seeing a
	// partially written record.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".hoard-*")
	if err != nil {
		return fmt.Errorf("failed to create temp record: %w", err)
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write record: %w", writeErr)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to place record: %w", err)
	}

	s.logger.Debug().Str("key", key).Msg("record written")
	return nil
}

// WriteAny converts an arbitrary Go value through the wire format and
// stores it. Non-representable values abort with ErrNotEncodable.
func (s *Store) WriteAny(key string, v any, expiry Expiry) error {
	value, err := FromAny(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotEncodable, err)
	}
	return s.Write(key, value, expiry)
}

// Load retrieves the envelope for a key: primary root first, legacy second,
// first parseable envelope wins. Any I/O or parse failure on a root is a
// miss for that root, not a fatal error. An expired envelope is deleted
// from both roots and reported absent.
func (s *Store) Load(key string) (Envelope, bool) {
	env, _, ok := s.load(key)
	if !ok {
		return Envelope{}, false
	}

	if !env.IsValid(s.now()) {
		s.logger.Debug().Str("key", key).Msg("record expired, evicting")
		s.Delete(key)
		return Envelope{}, false
	}

	return env, true
}

// load walks the read roots once each and returns the first parseable
// envelope, without applying the expiry policy.
func (s *Store) load(key string) (Envelope, Root, bool) {
	for _, root := range s.locator.readRoots() {
		if !s.locator.formatCompatible(root) {
			continue
		}

		path, err := s.locator.Resolve(key, root)
		if err != nil {
			return Envelope{}, root, false
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				s.logger.Debug().Err(err).Str("key", key).Str("root", root.String()).Msg("record unreadable")
			}
			continue
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			// Corrupt records are never matched, and not repaired.
			s.logger.Debug().Err(err).Str("key", key).Str("root", root.String()).Msg("record unparseable")
			continue
		}

		return env, root, true
	}
	return Envelope{}, RootPrimary, false
}

// Get retrieves the stored value for a key, applying the expiry policy.
func (s *Store) Get(key string) (Value, bool) {
	env, ok := s.Load(key)
	if !ok {
		return Value{}, false
	}
	return env.Storage, true
}

// Payload retrieves the stored value as a mapping, the shape the typed
// extraction functions operate on. Absent when the key is missing, expired,
// or not mapping-shaped.
func (s *Store) Payload(key string) (map[string]Value, bool) {
	v, ok := s.Get(key)
	if !ok {
		return nil, false
	}
	return v.AsMapping()
}

// Exists reports whether a valid record exists for the key. Like any read,
// it evicts an expired record it encounters.
func (s *Store) Exists(key string) bool {
	_, ok := s.Load(key)
	return ok
}

// Delete removes the record from both roots unconditionally. Best-effort:
// I/O failures are logged and ignored, never raised to the caller.
func (s *Store) Delete(key string) {
	for _, root := range []Root{RootPrimary, RootLegacy} {
		if root == RootLegacy && s.locator.Dir(RootLegacy) == "" {
			continue
		}
		path, err := s.locator.Resolve(key, root)
		if err != nil {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn().Err(err).Str("key", key).Str("root", root.String()).Msg("could not delete record")
		}
	}
}

// ClearAll removes both root namespace directories entirely. Every
// previously stored key subsequently reports absent.
func (s *Store) ClearAll() {
	s.locator.ClearAll()
}

// Purge sweeps both roots and removes expired records, one goroutine per
// record. Corrupt files are skipped, not repaired. Returns the number of
// records removed.
func (s *Store) Purge() int {
	now := s.now()

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	var removed atomic.Int64
	for _, info := range s.scan() {
		g.Go(func() error {
			if info.env.IsValid(now) {
				return nil
			}
			if err := os.Remove(info.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				s.logger.Warn().Err(err).Str("key", info.Key).Msg("could not purge record")
				return nil
			}
			removed.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return int(removed.Load())
}

// EntryInfo describes one stored record, for listings and diagnostics.
type EntryInfo struct {
	Key       string
	Root      Root
	SizeBytes int64
	Expires   *int64
}

// List returns the parseable records visible to a reader, primary entries
// shadowing legacy ones for the same key. Expired records are included;
// they are only removed when read individually or purged.
func (s *Store) List() []EntryInfo {
	seen := make(map[string]bool)
	var out []EntryInfo
	for _, info := range s.scan() {
		if seen[info.Key] {
			continue
		}
		seen[info.Key] = true
		out = append(out, info.EntryInfo)
	}
	return out
}

// RootStats summarizes one root's namespace directory.
type RootStats struct {
	Root      Root
	Entries   int
	SizeBytes int64
}

// Stats counts records and bytes per root, including unparseable files.
func (s *Store) Stats() []RootStats {
	var out []RootStats
	for _, root := range s.locator.readRoots() {
		stats := RootStats{Root: root}
		entries, err := os.ReadDir(s.locator.Dir(root))
		if err != nil {
			out = append(out, stats)
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != recordExtension {
				continue
			}
			stats.Entries++
			if fi, err := entry.Info(); err == nil {
				stats.SizeBytes += fi.Size()
			}
		}
		out = append(out, stats)
	}
	return out
}

// scanned pairs a listed entry with what a sweep needs: its path and
// decoded envelope.
type scanned struct {
	EntryInfo
	path string
	env  Envelope
}

// scan walks both roots in read order and yields every parseable record.
// Unreadable and unparseable files are skipped.
func (s *Store) scan() []scanned {
	var out []scanned
	for _, root := range s.locator.readRoots() {
		if !s.locator.formatCompatible(root) {
			continue
		}

		dir := s.locator.Dir(root)
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || filepath.Ext(name) != recordExtension {
				continue
			}

			path := filepath.Join(dir, name)
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}

			var env Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				continue
			}

			info := EntryInfo{
				Key:     strings.TrimSuffix(name, recordExtension),
				Root:    root,
				Expires: env.Expires,
			}
			if fi, err := entry.Info(); err == nil {
				info.SizeBytes = fi.Size()
			}

			out = append(out, scanned{EntryInfo: info, path: path, env: env})
		}
	}
	return out
}
