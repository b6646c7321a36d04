package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpiryDeadline(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	t.Run("never", func(t *testing.T) {
		assert.Nil(t, Never().deadline(now))
		assert.Nil(t, Expiry{}.deadline(now))
	})

	t.Run("relative resolves against write time", func(t *testing.T) {
		d := ExpiresIn(2 * time.Hour).deadline(now)
		require.NotNil(t, d)
		assert.Equal(t, now.Add(2*time.Hour).Unix(), *d)

		// Resolving later must not move the deadline written earlier.
		later := ExpiresIn(2 * time.Hour).deadline(now.Add(time.Hour))
		assert.NotEqual(t, *d, *later)
	})

	t.Run("absolute is independent of write time", func(t *testing.T) {
		at := now.Add(24 * time.Hour)
		d1 := ExpiresAt(at).deadline(now)
		d2 := ExpiresAt(at).deadline(now.Add(time.Hour))
		require.NotNil(t, d1)
		require.NotNil(t, d2)
		assert.Equal(t, *d1, *d2)
		assert.Equal(t, at.Unix(), *d1)
	})

	t.Run("non-positive duration is already expired", func(t *testing.T) {
		d := ExpiresIn(-time.Second).deadline(now)
		require.NotNil(t, d)
		env := Envelope{Expires: d, Storage: NullValue()}
		assert.False(t, env.IsValid(now))
	})
}
