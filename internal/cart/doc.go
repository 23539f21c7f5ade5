// Package cart holds the canonical shopping-cart snapshot and its
// derived pricing aggregates.
//
// The Store is the single owner of cart state. All mutations go through
// it, are validated against the per-item stock bound, and are persisted
// before the call returns. Readers observe changes either by polling the
// accessors or through Subscribe.
//
// Ownership model:
//   - Store owns the in-memory item list and the persisted snapshot.
//   - The sync coordinator never edits items directly; it calls Store
//     operations, or SetItems for an authoritative server snapshot.
//
// Mutations report failure through Result, never through error or panic.
// This keeps capacity violations ("not enough stock") an ordinary answer
// the caller can show the user, not an exceptional condition.
//
// The pricing functions are pure: Price on an Item is always the listed
// pre-discount unit price, and discounts are applied only at read time.
package cart
