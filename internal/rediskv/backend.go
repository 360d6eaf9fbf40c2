// Package rediskv implements the KV backend on top of a Redis server. Each
// key is namespaced with the configured prefix and holds one JSON document.
package rediskv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mesh-intelligence/studiobook/pkg/types"
)

// defaultTimeout bounds every round trip to the server.
const defaultTimeout = 5 * time.Second

// scanCount is the COUNT hint for each SCAN page.
const scanCount = 100

var _ types.Backend = (*Backend)(nil)

// Backend is a types.Backend backed by Redis.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	client   *redis.Client
	prefix   string
	timeout  time.Duration
}

// NewBackend returns a detached Redis backend.
func NewBackend() *Backend {
	return &Backend{timeout: defaultTimeout}
}

// NewWithClient returns a backend attached to an existing client.
func NewWithClient(client *redis.Client, prefix string) *Backend {
	return &Backend{
		attached: true,
		client:   client,
		prefix:   namespace(prefix),
		timeout:  defaultTimeout,
	}
}

// Attach dials the server described by config.Redis and verifies it with
// PING.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})

	ctx, cancel := b.ctx()
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to redis at %s: %w", config.Redis.Addr, err)
	}

	b.client = client
	b.prefix = namespace(config.Redis.Prefix)
	b.attached = true
	return nil
}

// Detach closes the client. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return nil
	}
	b.attached = false
	client := b.client
	b.client = nil
	return client.Close()
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

	ctx, cancel := b.ctx()
	defer cancel()
	data, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get key %s from redis: %w", key, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("%w: key %s: %v", types.ErrCorruptValue, key, err)
	}
	return true, nil
}

// Set stores the JSON encoding of value under key without expiry.
func (b *Backend) Set(key string, value any) error {
	if key == "" {
		return types.ErrInvalidKey
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.ErrDetached
	}

	ctx, cancel := b.ctx()
	defer cancel()
	if err := b.client.Set(ctx, b.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: failed to set key %s in redis: %v", types.ErrPersist, key, err)
	}
	return nil
}

// Delete removes key.
func (b *Backend) Delete(key string) error {
	if key == "" {
		return types.ErrInvalidKey
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.ErrDetached
	}

	ctx, cancel := b.ctx()
	defer cancel()
	if err := b.client.Del(ctx, b.prefix+key).Err(); err != nil {
		return fmt.Errorf("%w: failed to delete key %s from redis: %v", types.ErrPersist, key, err)
	}
	return nil
}

// Keys returns every key with the given prefix, namespace stripped, in
// ascending order. It walks the keyspace with SCAN so the server is never
// blocked by a single KEYS call.
func (b *Backend) Keys(prefix string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}

	ctx, cancel := b.ctx()
	defer cancel()
	match := escapeGlob(b.prefix+prefix) + "*"

	seen := make(map[string]bool)
	keys := []string{}
	var cursor uint64
	for {
		page, next, err := b.client.Scan(ctx, cursor, match, scanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys from redis: %w", err)
		}
		for _, k := range page {
			k = strings.TrimPrefix(k, b.prefix)
			// SCAN may return a key more than once.
			if seen[k] || !strings.HasPrefix(k, prefix) {
				continue
			}
			seen[k] = true
			keys = append(keys, k)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// globReplacer escapes the characters that are special in a Redis MATCH
// pattern.
var globReplacer = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
)

// escapeGlob makes s match itself literally in a MATCH pattern.
func escapeGlob(s string) string {
	return globReplacer.Replace(s)
}

func (b *Backend) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), b.timeout)
}

// namespace turns a configured prefix into the key namespace: "studio"
// becomes "studio:"; an empty prefix leaves keys unchanged.
func namespace(prefix string) string {
	if prefix == "" || strings.HasSuffix(prefix, ":") {
		return prefix
	}
	return prefix + ":"
}
