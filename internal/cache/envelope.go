package cache

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrMalformedEnvelope indicates a record file that parsed as JSON but does
// not match the envelope contract.
var ErrMalformedEnvelope = errors.New("malformed cache envelope")

// Envelope is the on-disk unit: a cached value plus optional expiry.
//
// The wire form is a JSON document with at most two top-level fields:
//
//	{ "expires": <number, epoch seconds, optional>, "storage": <any> }
//
// A nil Expires means the record never expires. Records written before
// expiry metadata existed carry no "expires" field and stay readable.
type Envelope struct {
	// Expires is the absolute expiry deadline in epoch seconds, or nil.
	Expires *int64

	// Storage is the cached value.
	Storage Value
}

// IsValid reports whether the envelope is still servable at the given time.
func (e Envelope) IsValid(now time.Time) bool {
	return e.Expires == nil || *e.Expires > now.Unix()
}

// MarshalJSON implements json.Marshaler. The "expires" field is omitted for
// never-expiring records.
func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Expires *int64 `json:"expires,omitempty"`
		Storage Value  `json:"storage"`
	}{
		Expires: e.Expires,
		Storage: e.Storage,
	})
}

// UnmarshalJSON implements json.Unmarshaler. The "storage" field is
// mandatory; a document without it is rejected as malformed.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var aux struct {
		Expires *int64          `json:"expires"`
		Storage json.RawMessage `json:"storage"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Storage == nil {
		return ErrMalformedEnvelope
	}

	var storage Value
	if err := storage.UnmarshalJSON(aux.Storage); err != nil {
		return err
	}

	e.Expires = aux.Expires
	e.Storage = storage
	return nil
}
