// Package persist provides the SQLite-backed durable cart snapshot.
//
// The snapshot is a single named record set: one row per cart line,
// rewritten wholesale after every store mutation. Only the cart store
// writes it, and only after the in-memory mutation has succeeded, so at
// rest the durable and in-memory snapshots are identical.
//
// Schema versioning uses PRAGMA user_version. Opening a database whose
// populated snapshot predates the current schema (for example, rows
// written before the stock bound existed) clears the snapshot and
// reports it through Swept, so the caller can tell the user to re-add
// their items. Empty snapshots migrate silently; ordinary post-checkout
// or post-clear states never retrigger the sweep.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package persist
