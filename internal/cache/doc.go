// Package cache implements a local, per-process persistent key-value cache.
//
// Values are written under a string key with a time-to-live and read back in
// typed form, including nested domain objects constructed recursively from
// the cached payload. Key features:
//   - One JSON file per key under <root>/<namespace>/, written atomically
//     (temp file + rename) so readers never observe a partial record
//   - Two storage roots: a durable primary root that receives all writes,
//     and a legacy root retained for read-only backward compatibility
//   - Lazy expiry: expired records are deleted when accessed, never by a
//     background sweep
//   - Generic typed retrieval over a tagged-union value representation,
//     with a capability interface for caller-defined domain types
//
// The cache is a best-effort layer: no condition originating inside it
// terminates the calling program. Every fallible path resolves to an
// explicit absence the caller can inspect.
package cache
