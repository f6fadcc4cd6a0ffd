// Package pebblestore provides a thin wrapper around Pebble with fsync policy,
// batches, prefix scans, and minimal metrics hooks. It backs the pebble item
// store.
//
// Usage:
//
//	db, err := pebblestore.Open(pebblestore.Options{
//	    DataDir: "./data/store",
//	    Fsync:   pebblestore.FsyncModeInterval,
//	})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	_ = db.Set([]byte("items/k"), []byte("{}"))
//	_ = db.ScanPrefix([]byte("items/"), func(k, v []byte) error { return nil })
package pebblestore
