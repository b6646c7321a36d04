package cache

import "time"

// expiryMode distinguishes the three ways a caller can specify expiry.
type expiryMode int

const (
	expireNever expiryMode = iota
	expireIn
	expireAt
)

// Expiry specifies when a written record stops being served: never, a
// relative duration from the time of the write, or an absolute timestamp.
//
// Relative durations are resolved to a single absolute deadline once, at
// write time, so correctness does not depend on when the record is later
// read. The zero Expiry never expires.
type Expiry struct {
	mode expiryMode
	ttl  time.Duration
	at   time.Time
}

// Never returns an expiry spec for records that never expire.
func Never() Expiry {
	return Expiry{mode: expireNever}
}

// ExpiresIn returns an expiry spec relative to the time of the write.
// Non-positive durations produce a record that is already expired.
func ExpiresIn(ttl time.Duration) Expiry {
	return Expiry{mode: expireIn, ttl: ttl}
}

// ExpiresAt returns an expiry spec with an absolute deadline.
func ExpiresAt(t time.Time) Expiry {
	return Expiry{mode: expireAt, at: t}
}

// deadline resolves the spec against the given write time. It returns nil
// for never-expiring records, otherwise the deadline in epoch seconds.
func (e Expiry) deadline(now time.Time) *int64 {
	switch e.mode {
	case expireIn:
		d := now.Add(e.ttl).Unix()
		return &d
	case expireAt:
		d := e.at.Unix()
		return &d
	default:
		return nil
	}
}
