// Package itemstore holds the durable list of candidate items.
//
// The review engine only enumerates, checks and removes items; acceptance
// never alters the store. Three backends are provided:
//
//   - FileStore: the line-oriented text list ("url | label" per line)
//   - PebbleStore: records under items/{key} in a Pebble database
//   - SQLiteStore: an items table in a SQLite file
//
// Every backend makes Remove idempotent and atomic per call, so concurrent
// removals of different keys never lose each other's writes.
package itemstore
