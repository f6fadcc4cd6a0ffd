// Package notify fans review events out to per-consumer subscribers. The
// HTTP layer streams them as Server-Sent Events.
//
// The hub keeps the latest outstanding presentation of every consumer so a
// subscriber that connects late (or reconnects) still sees the item it is
// expected to judge.
package notify
