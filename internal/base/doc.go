// Package base provides the typed value and property model shared by every
// other dpvalidate package.
//
// This package contains type definitions, canonical serialization and
// content hashes. It imports only internal/errs, so it stays the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Value, ArrayND, Jagged, Hashmap, ValueProperties and Nature are sealed
//     interfaces. Consumers use exhaustive type switches over the variants.
//   - Dense arrays store row-major data with rank 0, 1 or 2.
//   - A nil entry in a per-column slice means "unknown", never "unbounded".
//   - Properties are immutable once computed; propagation clones before
//     patching.
//   - Canonical JSON is the only serialization used for hashing.
package base
