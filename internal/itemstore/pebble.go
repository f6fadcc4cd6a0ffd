package itemstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pebblestore "github.com/MagicGod/shly/internal/storage/pebble"
)

var itemPrefix = []byte("items/")

func itemKey(key string) []byte {
	k := make([]byte, 0, len(itemPrefix)+len(key))
	k = append(k, itemPrefix...)
	return append(k, key...)
}

type pebbleRecord struct {
	Key       string `json:"key"`
	Label     string `json:"label,omitempty"`
	AddedAtMs int64  `json:"addedAtMs"`
}

// PebbleStore keeps items under items/{key} in a Pebble database.
type PebbleStore struct {
	db    *pebblestore.DB
	owned bool
}

// NewPebbleStore wraps an already-open database. Close does not close db.
func NewPebbleStore(db *pebblestore.DB) *PebbleStore {
	return &PebbleStore{db: db}
}

// OpenPebbleStore opens a database at dir that the store owns.
func OpenPebbleStore(dir string, fsync pebblestore.FsyncMode) (*PebbleStore, error) {
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: fsync})
	if err != nil {
		return nil, fmt.Errorf("open pebble item store: %w", err)
	}
	return &PebbleStore{db: db, owned: true}, nil
}

// ListAll returns items in key order.
func (s *PebbleStore) ListAll(ctx context.Context) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Item
	err := s.db.ScanPrefix(itemPrefix, func(_, v []byte) error {
		var rec pebbleRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return nil // skip corrupt record
		}
		out = append(out, Item{Key: rec.Key, Label: rec.Label})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return out, nil
}

// Remove deletes the record for key; absent keys are a no-op.
func (s *PebbleStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Delete(itemKey(key))
}

// Exists reports whether a record for key is present.
func (s *PebbleStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.db.Has(itemKey(key))
}

// Put writes items in one batch. Existing keys keep their original
// insertion time.
func (s *PebbleStore) Put(ctx context.Context, items []Item) error {
	b := s.db.NewBatch()
	defer b.Close()
	now := time.Now().UnixMilli()
	for _, it := range items {
		if it.Key == "" {
			continue
		}
		rec := pebbleRecord{Key: it.Key, Label: it.Label, AddedAtMs: now}
		if prev, err := s.db.Get(itemKey(it.Key)); err == nil {
			var old pebbleRecord
			if json.Unmarshal(prev, &old) == nil && old.AddedAtMs > 0 {
				rec.AddedAtMs = old.AddedAtMs
			}
		}
		v, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal item: %w", err)
		}
		if err := b.Set(itemKey(it.Key), v, nil); err != nil {
			return err
		}
	}
	return s.db.CommitBatch(ctx, b)
}

// Close closes the database when the store opened it.
func (s *PebbleStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
