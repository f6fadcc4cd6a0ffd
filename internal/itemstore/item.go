package itemstore

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

// ErrStoreUnavailable is returned when the backing medium cannot be read.
// Callers treat it as "no items".
var ErrStoreUnavailable = errors.New("itemstore: store unavailable")

// Item is a candidate for review. Key is derived from the source reference
// and is stable; Label is an optional display string.
type Item struct {
	Key   string `json:"key"`
	Label string `json:"label,omitempty"`
}

// Store is the full backend surface. The review engine uses only ListAll,
// Remove and Exists; Put is for imports.
type Store interface {
	ListAll(ctx context.Context) ([]Item, error)
	Remove(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Put(ctx context.Context, items []Item) error
	Close() error
}

// ParseLine parses one list line of the form "url" or "url | label".
// ok is false for blank lines and lines without a key.
func ParseLine(line string) (Item, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Item{}, false
	}
	key, label, _ := strings.Cut(line, "|")
	key = strings.TrimSpace(key)
	if key == "" {
		return Item{}, false
	}
	return Item{Key: key, Label: strings.TrimSpace(label)}, true
}

// FormatLine is the inverse of ParseLine.
func FormatLine(it Item) string {
	if it.Label == "" {
		return it.Key
	}
	return it.Key + " | " + it.Label
}

// ParseList reads a text list. Duplicate keys keep their first occurrence.
func ParseList(r io.Reader) ([]Item, error) {
	var out []Item
	seen := make(map[string]struct{})
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		it, ok := ParseLine(sc.Text())
		if !ok {
			continue
		}
		if _, dup := seen[it.Key]; dup {
			continue
		}
		seen[it.Key] = struct{}{}
		out = append(out, it)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ScreenName returns the last path segment of a profile reference.
func ScreenName(key string) string {
	key = strings.TrimRight(key, "/")
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}
