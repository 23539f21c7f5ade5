// Package syncer bridges optimistic local cart mutation with eventual
// remote confirmation.
//
// Every mutating operation follows the same protocol: snapshot the
// pre-mutation item list, apply the change to the local store
// synchronously (the caller sees it immediately), then confirm it with
// the remote gateway on a background goroutine. The confirmation outcome
// is classified:
//
//   - reconciled: the gateway returned a full cart snapshot, which
//     replaces local state so server-computed fields are absorbed
//   - kept local: the gateway acknowledged without a snapshot, or failed
//     with an auth, network or unrecognized error - the optimistic
//     change stands and the failure is only logged
//   - reverted: the gateway rejected the proposed state (validation
//     kind), so the pre-mutation snapshot is restored and the error is
//     recorded for surfacing
//
// The coordinator never blocks a caller on network latency and never
// lets a gateway failure escape as a panic or returned error from a
// mutating call. In-flight confirmations are tracked; Wait drains them,
// which CLI commands do before exiting.
//
// Full synchronization runs once per authenticated session. Its merge
// rule protects a guest-built cart: an empty remote cart never wipes a
// populated local one.
package syncer
