package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeJSON(t *testing.T) {
	t.Run("expires omitted when never", func(t *testing.T) {
		env := Envelope{Storage: StringValue("v")}
		data, err := json.Marshal(env)
		require.NoError(t, err)
		assert.JSONEq(t, `{"storage":"v"}`, string(data))
	})

	t.Run("expires carried as epoch seconds", func(t *testing.T) {
		deadline := int64(1700000000)
		env := Envelope{Expires: &deadline, Storage: IntValue(1)}
		data, err := json.Marshal(env)
		require.NoError(t, err)
		assert.JSONEq(t, `{"expires":1700000000,"storage":1}`, string(data))
	})

	t.Run("storage is mandatory", func(t *testing.T) {
		var env Envelope
		err := json.Unmarshal([]byte(`{"expires":1700000000}`), &env)
		require.ErrorIs(t, err, ErrMalformedEnvelope)
	})

	t.Run("null storage is present", func(t *testing.T) {
		var env Envelope
		require.NoError(t, json.Unmarshal([]byte(`{"storage":null}`), &env))
		assert.True(t, env.Storage.IsNull())
	})

	t.Run("round trip", func(t *testing.T) {
		deadline := time.Now().Add(time.Hour).Unix()
		env := Envelope{
			Expires: &deadline,
			Storage: MappingValue(map[string]Value{"name": StringValue("Ann")}),
		}

		data, err := json.Marshal(env)
		require.NoError(t, err)

		var decoded Envelope
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.NotNil(t, decoded.Expires)
		assert.Equal(t, deadline, *decoded.Expires)
		assert.True(t, env.Storage.Equal(decoded.Storage))
	})
}

func TestEnvelopeIsValid(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute).Unix()
	future := now.Add(time.Minute).Unix()

	tests := []struct {
		name    string
		expires *int64
		want    bool
	}{
		{name: "no expiry never expires", expires: nil, want: true},
		{name: "future deadline is valid", expires: &future, want: true},
		{name: "past deadline is expired", expires: &past, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Envelope{Expires: tt.expires, Storage: NullValue()}
			assert.Equal(t, tt.want, env.IsValid(now))
		})
	}

	t.Run("deadline equal to now is expired", func(t *testing.T) {
		deadline := now.Unix()
		env := Envelope{Expires: &deadline, Storage: NullValue()}
		assert.False(t, env.IsValid(now))
	})
}
