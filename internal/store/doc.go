// Package store provides the SQLite-backed ledger of validation runs.
//
// The ledger is append-only:
//   - Runs: one row per engine pass, keyed by a UUIDv7 run ID
//   - Node results: one row per evaluated node, with its status and
//     propagated properties
//
// # Critical Patterns
//
// Logical Time
//   - All ordering uses seq INTEGER (logical clock), NEVER timestamps
//
// Deterministic Query Results
//   - Node queries use: ORDER BY seq ASC, node COLLATE BINARY ASC
//
// Content Addressing
//   - Properties are stored as RFC 8785 canonical JSON
//   - properties_hash is the domain-separated SHA-256 from base.PropertiesHash,
//     so two runs that derive the same facts store the same hash
//
// # Schema Versions
//
// schema.sql creates the tables; later changes are entries in the migrations
// list, each applied in its own transaction together with PRAGMA
// user_version. Open brings any older ledger up to date.
package store
