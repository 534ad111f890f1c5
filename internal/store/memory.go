package store

import (
	"context"
	"sync"
)

// Memory keeps slots in process memory. Blobs are stored serialized, so
// values returned by Load never alias what was saved.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory returns an empty in-memory store
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, key string, dest any) (bool, error) {
	m.mu.RLock()
	blob, ok := m.blobs[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return true, Decode(blob, dest)
}

func (m *Memory) Save(_ context.Context, slots ...Slot) error {
	encoded, err := encodeAll(slots)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, b := range encoded {
		m.blobs[k] = b
	}
	return nil
}
