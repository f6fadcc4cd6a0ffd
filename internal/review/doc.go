// Package review coordinates a shared, deduplicated review queue across many
// independent consumers.
//
// # Components
//
//   - RetirementSet: process-wide set of keys that received a verdict from
//     any consumer. Monotonic; Retire reports first insertion atomically.
//   - Registry: consumer id -> *Session, created lazily and kept for the
//     process lifetime. Broadcast purges a retired key from every session.
//   - Session: shuffled pending queue, at most one current presentation, and
//     the accepted list.
//   - Distributor: presents the head of a session's queue, skipping retired
//     keys. Fetch and delivery run off the coordination path.
//   - Processor: applies accept/reject/skip. It is the single point through
//     which retirement and broadcasts are serialized.
//
// # Flow
//
//  1. Start: non-retired items are loaded from the ItemStore and shuffled
//     into the session; the first one is presented.
//  2. Verdict: the current item is retired (accept also records it, reject
//     also removes it from the store) and purged from every other session.
//  3. The owner is advanced to its next item; sessions whose current item
//     was purged are advanced too.
//  4. When a queue drains, a completion carrying the accepted list is sent.
//
// A verdict for an item that is no longer current (restart, purge, double
// click) is a stale action and is ignored. A verdict from an identity other
// than the session owner is rejected with ErrIdentityMismatch.
package review
