package cache

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DecodeContext wraps the raw material for constructing a domain object:
// either a cache key, meaning "load and decode from disk", or an
// already-decoded in-memory value. Nested objects recurse through
// value-backed contexts without re-reading disk.
type DecodeContext struct {
	store *Store
	key   string

	value  Value
	loaded bool
}

// NewValueContext builds an in-memory DecodeContext around an
// already-decoded value.
func NewValueContext(v Value) *DecodeContext {
	return &DecodeContext{value: v, loaded: true}
}

// KeyContext builds a DecodeContext that loads the key from this store on
// first access. The expiry policy applies to the load.
func (s *Store) KeyContext(key string) *DecodeContext {
	return &DecodeContext{store: s, key: key}
}

// Value returns the decoded value, loading from disk for key-backed
// contexts. Absent when a key-backed load misses.
func (dc *DecodeContext) Value() (Value, bool) {
	if !dc.loaded {
		if dc.store == nil {
			return Value{}, false
		}
		v, ok := dc.store.Get(dc.key)
		if !ok {
			return Value{}, false
		}
		dc.value = v
		dc.loaded = true
	}
	return dc.value, true
}

// Mapping returns the decoded value as a string-keyed mapping, the shape
// the typed extraction functions operate on.
func (dc *DecodeContext) Mapping() (map[string]Value, bool) {
	v, ok := dc.Value()
	if !ok {
		return nil, false
	}
	return v.AsMapping()
}

// DecodeInto projects the decoded mapping onto a caller struct, matched by
// field name or `mapstructure` tags. A convenience for domain types that
// prefer struct tags over field-by-field extraction.
func (dc *DecodeContext) DecodeInto(target any) error {
	m, ok := dc.Mapping()
	if !ok {
		return errors.New("no mapping to decode")
	}

	raw := make(map[string]any, len(m))
	for k, v := range m {
		raw[k] = v.Interface()
	}

	if err := mapstructure.Decode(raw, target); err != nil {
		return fmt.Errorf("decode into %T: %w", target, err)
	}
	return nil
}

// ContextDecoder is the capability a domain type implements to become
// constructible from cached data. DecodeCacheValue populates the receiver
// from the context and returns an error on construction failure.
//
// The engine depends only on this interface, never on concrete domain
// types.
type ContextDecoder interface {
	DecodeCacheValue(dc *DecodeContext) error
}

// ValueEncoder is the companion capability: exposing an instance as an
// encodable generic value for storage.
type ValueEncoder interface {
	CacheValue() (Value, error)
}

// WriteObject stores a domain object implementing the ValueEncoder
// capability. Encoding failure aborts with ErrNotEncodable.
func (s *Store) WriteObject(key string, obj ValueEncoder, expiry Expiry) error {
	v, err := obj.CacheValue()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotEncodable, err)
	}
	return s.Write(key, v, expiry)
}
