package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File keeps every slot in one JSON document on disk. Writes go to a
// temporary file that is renamed over the original, so a crash mid-write
// leaves the previous snapshot intact.
type File struct {
	mu    sync.Mutex
	path  string
	blobs map[string]json.RawMessage
}

// NewFile opens the snapshot at path; a missing file is an empty store
func NewFile(path string) (*File, error) {
	f := &File{path: path, blobs: make(map[string]json.RawMessage)}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &f.blobs); err != nil {
			return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
		}
	}
	return f, nil
}

func (f *File) Load(_ context.Context, key string, dest any) (bool, error) {
	f.mu.Lock()
	blob, ok := f.blobs[key]
	f.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, Decode(blob, dest)
}

func (f *File) Save(_ context.Context, slots ...Slot) error {
	encoded, err := encodeAll(slots)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	next := make(map[string]json.RawMessage, len(f.blobs)+len(encoded))
	for k, v := range f.blobs {
		next[k] = v
	}
	for k, v := range encoded {
		next[k] = v
	}
	if err := writeAtomic(f.path, next); err != nil {
		return err
	}
	f.blobs = next
	return nil
}

func writeAtomic(path string, doc map[string]json.RawMessage) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		out.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	return os.Rename(tmp, path)
}
