// Package memory implements a process-local KV backend. Values are held as
// encoded JSON so callers observe the same copy semantics as the durable
// backends. Nothing survives Detach.
package memory

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mesh-intelligence/studiobook/pkg/types"
)

var _ types.Backend = (*Backend)(nil)

// Backend is an in-memory types.Backend.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	values   map[string][]byte
}

// NewBackend returns a detached in-memory backend.
func NewBackend() *Backend {
	return &Backend{}
}

// NewAttached returns an in-memory backend that is ready for use.
func NewAttached() *Backend {
	return &Backend{attached: true, values: make(map[string][]byte)}
}

// Attach prepares an empty value map.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	b.values = make(map[string][]byte)
	b.attached = true
	return nil
}

// Detach drops every stored value. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attached = false
	b.values = nil
	return nil
}

// Get decodes the value stored under key into dst.
func (b *Backend) Get(key string, dst any) (bool, error) {
	if key == "" {
		return false, types.ErrInvalidKey
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return false, types.ErrDetached
	}
	raw, ok := b.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("%w: key %s: %v", types.ErrCorruptValue, key, err)
	}
	return true, nil
}

// Set stores the JSON encoding of value under key.
func (b *Backend) Set(key string, value any) error {
	if key == "" {
		return types.ErrInvalidKey
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling value for key %s: %w", key, err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}
	b.values[key] = data
	return nil
}

// SetRaw stores data under key without encoding it. It lets tests plant
// corrupt values.
func (b *Backend) SetRaw(key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}
	b.values[key] = append([]byte(nil), data...)
	return nil
}

// Delete removes key.
func (b *Backend) Delete(key string) error {
	if key == "" {
		return types.ErrInvalidKey
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}
	delete(b.values, key)
	return nil
}

// Keys returns every key with the given prefix in ascending order.
func (b *Backend) Keys(prefix string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	keys := []string{}
	for k := range b.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
