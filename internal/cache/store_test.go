package cache

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock is an adjustable clock injected into test stores.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) (*Store, Roots, *testClock) {
	t.Helper()
	roots := Roots{
		Primary: filepath.Join(t.TempDir(), "primary"),
		Legacy:  filepath.Join(t.TempDir(), "legacy"),
	}
	clock := &testClock{now: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)}

	store, err := New(Options{
		Roots:     roots,
		Namespace: "testns",
		Clock:     clock.Now,
	})
	require.NoError(t, err)
	return store, roots, clock
}

// writeLegacyRecord places an envelope directly into the legacy root, the
// way an older installation would have left it.
func writeLegacyRecord(t *testing.T, roots Roots, key string, env Envelope) {
	t.Helper()
	dir := filepath.Join(roots.Legacy, "testns")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	data, err := json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, key+recordExtension), data, 0o600))
}

func TestStoreRoundTrip(t *testing.T) {
	store, _, _ := newTestStore(t)

	value := MappingValue(map[string]Value{
		"name": StringValue("Ann"),
		"age":  IntValue(30),
		"tags": SequenceValue(StringValue("a"), StringValue("b")),
	})

	require.NoError(t, store.Write("user", value, Never()))

	got, ok := store.Get("user")
	require.True(t, ok)
	assert.True(t, value.Equal(got))

	t.Run("overwrite wins", func(t *testing.T) {
		require.NoError(t, store.Write("user", StringValue("second"), Never()))
		got, ok := store.Get("user")
		require.True(t, ok)
		s, _ := got.AsString()
		assert.Equal(t, "second", s)
	})

	t.Run("missing key is absent", func(t *testing.T) {
		_, ok := store.Get("nope")
		assert.False(t, ok)
	})
}

func TestStoreExpiry(t *testing.T) {
	store, roots, clock := newTestStore(t)

	value := MappingValue(map[string]Value{"name": StringValue("Ann"), "age": IntValue(30)})
	require.NoError(t, store.Write("user", value, ExpiresIn(2*time.Second)))

	// Mirror the record into the legacy root so eviction can be observed
	// on both.
	deadline := clock.Now().Add(2 * time.Second).Unix()
	writeLegacyRecord(t, roots, "user", Envelope{Expires: &deadline, Storage: value})

	// Immediate read hits.
	got, ok := store.Get("user")
	require.True(t, ok)
	assert.True(t, value.Equal(got))

	// Past the deadline the record is absent and removed from both roots.
	clock.Advance(3 * time.Second)

	_, ok = store.Get("user")
	assert.False(t, ok)

	_, err := os.Stat(filepath.Join(roots.Primary, "testns", "user.json"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(roots.Legacy, "testns", "user.json"))
	assert.True(t, os.IsNotExist(err))

	t.Run("record without expires never expires", func(t *testing.T) {
		writeLegacyRecord(t, roots, "old", Envelope{Storage: StringValue("pre-expiry")})
		clock.Advance(100 * 24 * time.Hour)
		_, ok := store.Get("old")
		assert.True(t, ok)
	})
}

func TestStoreWriteAllOrNothing(t *testing.T) {
	store, _, _ := newTestStore(t)

	require.NoError(t, store.Write("k", StringValue("prior"), Never()))

	// NaN is not representable in the wire format.
	err := store.WriteAny("k", map[string]any{"bad": math.NaN()}, Never())
	require.ErrorIs(t, err, ErrNotEncodable)

	got, ok := store.Get("k")
	require.True(t, ok)
	s, _ := got.AsString()
	assert.Equal(t, "prior", s)
}

func TestStoreLegacyFallback(t *testing.T) {
	store, roots, _ := newTestStore(t)

	t.Run("legacy-only key reads transparently", func(t *testing.T) {
		writeLegacyRecord(t, roots, "legacy-only", Envelope{Storage: StringValue("old")})
		got, ok := store.Get("legacy-only")
		require.True(t, ok)
		s, _ := got.AsString()
		assert.Equal(t, "old", s)
	})

	t.Run("primary shadows legacy", func(t *testing.T) {
		writeLegacyRecord(t, roots, "both", Envelope{Storage: StringValue("legacy")})
		require.NoError(t, store.Write("both", StringValue("primary"), Never()))

		got, ok := store.Get("both")
		require.True(t, ok)
		s, _ := got.AsString()
		assert.Equal(t, "primary", s)
	})

	t.Run("writes never touch the legacy root", func(t *testing.T) {
		require.NoError(t, store.Write("fresh", StringValue("v"), Never()))
		_, err := os.Stat(filepath.Join(roots.Legacy, "testns", "fresh.json"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("corrupt primary falls through to legacy", func(t *testing.T) {
		writeLegacyRecord(t, roots, "corrupt", Envelope{Storage: StringValue("good")})
		primaryPath := filepath.Join(roots.Primary, "testns", "corrupt.json")
		require.NoError(t, os.MkdirAll(filepath.Dir(primaryPath), 0o750))
		require.NoError(t, os.WriteFile(primaryPath, []byte("{not json"), 0o600))

		got, ok := store.Get("corrupt")
		require.True(t, ok)
		s, _ := got.AsString()
		assert.Equal(t, "good", s)

		// The unparseable file is not repaired or deleted.
		_, err := os.Stat(primaryPath)
		require.NoError(t, err)
	})
}

func TestStoreDelete(t *testing.T) {
	store, roots, _ := newTestStore(t)

	require.NoError(t, store.Write("k", StringValue("v"), Never()))
	writeLegacyRecord(t, roots, "k", Envelope{Storage: StringValue("v")})

	store.Delete("k")

	assert.False(t, store.Exists("k"))
	_, err := os.Stat(filepath.Join(roots.Legacy, "testns", "k.json"))
	assert.True(t, os.IsNotExist(err))

	// Deleting a missing key is a no-op.
	store.Delete("k")

	t.Run("never creates the legacy namespace", func(t *testing.T) {
		store, roots, _ := newTestStore(t)
		require.NoError(t, store.Write("p", StringValue("v"), Never()))

		store.Delete("p")

		_, err := os.Stat(filepath.Join(roots.Legacy, "testns"))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestStoreClearAll(t *testing.T) {
	store, roots, _ := newTestStore(t)

	require.NoError(t, store.Write("a", IntValue(1), Never()))
	require.NoError(t, store.Write("b", IntValue(2), Never()))
	writeLegacyRecord(t, roots, "c", Envelope{Storage: IntValue(3)})

	store.ClearAll()

	for _, key := range []string{"a", "b", "c"} {
		assert.False(t, store.Exists(key), "key %q should be gone", key)
	}
}

func TestStorePurge(t *testing.T) {
	store, _, clock := newTestStore(t)

	require.NoError(t, store.Write("keep", StringValue("v"), Never()))
	require.NoError(t, store.Write("soon", StringValue("v"), ExpiresIn(time.Second)))
	require.NoError(t, store.Write("later", StringValue("v"), ExpiresIn(time.Hour)))

	clock.Advance(2 * time.Second)

	removed := store.Purge()
	assert.Equal(t, 1, removed)

	assert.True(t, store.Exists("keep"))
	assert.True(t, store.Exists("later"))
	assert.False(t, store.Exists("soon"))

	t.Run("idempotent", func(t *testing.T) {
		assert.Equal(t, 0, store.Purge())
	})
}

func TestStoreFormatGate(t *testing.T) {
	t.Run("incompatible stamp hides the root on read", func(t *testing.T) {
		store, roots, _ := newTestStore(t)
		require.NoError(t, store.Write("k", StringValue("v"), Never()))

		// A future-major stamp makes the root behave as empty.
		stamp := filepath.Join(roots.Primary, "testns", manifestName)
		require.NoError(t, os.WriteFile(stamp, []byte("2.0.0\n"), 0o600))

		_, ok := store.Get("k")
		assert.False(t, ok)
	})

	t.Run("write replaces an incompatible stamp", func(t *testing.T) {
		store, roots, _ := newTestStore(t)
		require.NoError(t, store.Write("a", StringValue("v"), Never()))

		stamp := filepath.Join(roots.Primary, "testns", manifestName)
		require.NoError(t, os.WriteFile(stamp, []byte("2.0.0\n"), 0o600))

		// The next write restamps the root with this build's format, so
		// the record it places is immediately readable.
		require.NoError(t, store.Write("b", StringValue("w"), Never()))

		data, err := os.ReadFile(stamp)
		require.NoError(t, err)
		assert.Equal(t, FormatVersion+"\n", string(data))

		got, ok := store.Get("b")
		require.True(t, ok)
		s, _ := got.AsString()
		assert.Equal(t, "w", s)
	})
}

func TestStoreListAndStats(t *testing.T) {
	store, roots, _ := newTestStore(t)

	require.NoError(t, store.Write("a", IntValue(1), Never()))
	require.NoError(t, store.Write("b", IntValue(2), ExpiresIn(time.Hour)))
	writeLegacyRecord(t, roots, "a", Envelope{Storage: IntValue(0)})
	writeLegacyRecord(t, roots, "c", Envelope{Storage: IntValue(3)})

	entries := store.List()
	require.Len(t, entries, 3)

	byKey := make(map[string]EntryInfo, len(entries))
	for _, e := range entries {
		byKey[e.Key] = e
	}
	assert.Equal(t, RootPrimary, byKey["a"].Root, "primary entry shadows legacy")
	assert.Equal(t, RootLegacy, byKey["c"].Root)
	assert.NotNil(t, byKey["b"].Expires)
	assert.Nil(t, byKey["a"].Expires)

	stats := store.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, 2, stats[0].Entries)
	assert.Equal(t, 2, stats[1].Entries)
	assert.Greater(t, stats[0].SizeBytes, int64(0))
}

// TestStoreScenario covers the documented end-to-end flow: a record written
// with a two-second TTL reads back immediately and is gone, file included,
// after three seconds.
func TestStoreScenario(t *testing.T) {
	store, roots, clock := newTestStore(t)

	require.NoError(t, store.WriteAny("user", map[string]any{"name": "Ann", "age": 30}, ExpiresIn(2*time.Second)))

	payload, ok := store.Payload("user")
	require.True(t, ok)
	name, ok := Scalar[string](payload, "name")
	require.True(t, ok)
	assert.Equal(t, "Ann", name)
	age, ok := Scalar[int](payload, "age")
	require.True(t, ok)
	assert.Equal(t, 30, age)

	clock.Advance(3 * time.Second)

	_, ok = store.Get("user")
	assert.False(t, ok)
	_, err := os.Stat(filepath.Join(roots.Primary, "testns", "user.json"))
	assert.True(t, os.IsNotExist(err))
}
