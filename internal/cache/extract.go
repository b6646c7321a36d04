package cache

// Typed retrieval over a decoded payload mapping.
//
// Scalar lookups fail fast: a shape mismatch invalidates the whole
// operation, preserving type safety for leaf values. Collection lookups are
// best-effort per element: incompatible elements are silently dropped, so
// schema evolution in stored elements degrades gracefully instead of
// invalidating the whole collection.

// Scalarlike is the set of leaf types directly representable without
// recursive decoding.
type Scalarlike interface {
	bool | string | int | int64 | float64
}

// decoderPtr constrains P to a pointer to T implementing the
// ContextDecoder capability, so Object and Objects can construct values
// without callers passing constructors.
type decoderPtr[T any] interface {
	*T
	ContextDecoder
}

// Scalar looks up a leaf value. Absent when the key is missing or the
// stored value is not shape-compatible with T.
func Scalar[T Scalarlike](payload map[string]Value, key string) (T, bool) {
	var zero T
	raw, ok := payload[key]
	if !ok {
		return zero, false
	}
	return scalarFromValue[T](raw)
}

// Scalars looks up a sequence of leaf values, keeping only the elements
// shape-compatible with T. Absent only when the key is missing or the
// stored value is not a sequence; incompatible elements reduce the result,
// they never fail it.
func Scalars[T Scalarlike](payload map[string]Value, key string) ([]T, bool) {
	raw, ok := payload[key]
	if !ok {
		return nil, false
	}
	seq, ok := raw.AsSequence()
	if !ok {
		return nil, false
	}

	out := make([]T, 0, len(seq))
	for _, elem := range seq {
		if v, ok := scalarFromValue[T](elem); ok {
			out = append(out, v)
		}
	}
	return out, true
}

// Object looks up a nested domain object and constructs it through the
// ContextDecoder capability, wrapping the raw element in an in-memory
// DecodeContext (no disk re-read). Absent when the key is missing or
// construction fails.
func Object[T any, P decoderPtr[T]](payload map[string]Value, key string) (T, bool) {
	var zero T
	raw, ok := payload[key]
	if !ok {
		return zero, false
	}

	var out T
	if err := P(&out).DecodeCacheValue(NewValueContext(raw)); err != nil {
		return zero, false
	}
	return out, true
}

// Objects looks up a sequence of nested domain objects. Elements that are
// not mapping-shaped or whose construction fails are silently skipped;
// the successfully constructed subset is returned.
func Objects[T any, P decoderPtr[T]](payload map[string]Value, key string) ([]T, bool) {
	raw, ok := payload[key]
	if !ok {
		return nil, false
	}
	seq, ok := raw.AsSequence()
	if !ok {
		return nil, false
	}

	out := make([]T, 0, len(seq))
	for _, elem := range seq {
		if _, ok := elem.AsMapping(); !ok {
			continue
		}
		var item T
		if err := P(&item).DecodeCacheValue(NewValueContext(elem)); err != nil {
			continue
		}
		out = append(out, item)
	}
	return out, true
}

// scalarFromValue matches a Value against the requested leaf type.
func scalarFromValue[T Scalarlike](v Value) (T, bool) {
	var out T
	switch p := any(&out).(type) {
	case *bool:
		b, ok := v.AsBool()
		if !ok {
			return out, false
		}
		*p = b
	case *string:
		s, ok := v.AsString()
		if !ok {
			return out, false
		}
		*p = s
	case *float64:
		n, ok := v.AsNumber()
		if !ok {
			return out, false
		}
		*p = n
	case *int:
		n, ok := v.AsInt()
		if !ok {
			return out, false
		}
		*p = int(n)
	case *int64:
		n, ok := v.AsInt()
		if !ok {
			return out, false
		}
		*p = n
	}
	return out, true
}
