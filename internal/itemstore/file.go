package itemstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore keeps items in a text file, one "url | label" per line. Lines
// are rewritten through a temp file and rename so a crash never leaves a
// half-written list.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store over path. The file need not exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file location.
func (s *FileStore) Path() string { return s.path }

// ListAll reads every item. A missing file is an empty list.
func (s *FileStore) ListAll(ctx context.Context) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

func (s *FileStore) readLocked() ([]Item, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer f.Close()
	items, err := ParseList(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return items, nil
}

// Remove deletes every line whose key equals key. Absent keys are a no-op
// and leave the file untouched.
func (s *FileStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	kept := lines[:0]
	removed := false
	for _, line := range lines {
		if it, ok := ParseLine(line); ok && it.Key == key {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	if !removed {
		return nil
	}
	var buf bytes.Buffer
	for _, line := range kept {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return s.writeLocked(buf.Bytes())
}

// Exists reports whether key is listed.
func (s *FileStore) Exists(ctx context.Context, key string) (bool, error) {
	items, err := s.ListAll(ctx)
	if err != nil {
		return false, err
	}
	for _, it := range items {
		if it.Key == key {
			return true, nil
		}
	}
	return false, nil
}

// Put appends items whose keys are not yet listed.
func (s *FileStore) Put(ctx context.Context, items []Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.readLocked()
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(existing))
	var buf bytes.Buffer
	for _, it := range existing {
		seen[it.Key] = struct{}{}
		buf.WriteString(FormatLine(it))
		buf.WriteByte('\n')
	}
	for _, it := range items {
		if _, ok := seen[it.Key]; ok || it.Key == "" {
			continue
		}
		seen[it.Key] = struct{}{}
		buf.WriteString(FormatLine(it))
		buf.WriteByte('\n')
	}
	return s.writeLocked(buf.Bytes())
}

func (s *FileStore) writeLocked(data []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".items-*")
	if err != nil {
		return fmt.Errorf("create temp list: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp list: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp list: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace list: %w", err)
	}
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error { return nil }
