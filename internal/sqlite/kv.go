// This file implements the KV operations of the SQLite backend.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/studiobook/pkg/types"
)

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

	var raw string
	err := b.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("getting key %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("%w: key %s: %v", types.ErrCorruptValue, key, err)
	}
	return true, nil
}

// Set stores value under key and rewrites kv.jsonl before committing, so the
// database never holds a value the file does not.
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

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?) "+
			"ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at",
		key, string(data), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("storing key %s: %w", key, err)
	}

	if err := b.persistJSONL(tx); err != nil {
		b.log.WithFields(logrus.Fields{"key": key, "op": "set"}).WithError(err).Error("persist failed")
		return fmt.Errorf("%w: %v", types.ErrPersist, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing key %s: %w", key, err)
	}
	return nil
}

// Delete removes key. A missing key is not an error and does not rewrite
// kv.jsonl.
func (b *Backend) Delete(key string) error {
	if key == "" {
		return types.ErrInvalidKey
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM kv WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("deleting key %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting key %s: %w", key, err)
	}
	if n == 0 {
		return nil
	}

	if err := b.persistJSONL(tx); err != nil {
		b.log.WithFields(logrus.Fields{"key": key, "op": "delete"}).WithError(err).Error("persist failed")
		return fmt.Errorf("%w: %v", types.ErrPersist, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete of %s: %w", key, err)
	}
	return nil
}

// Keys returns every key with the given prefix in ascending order.
func (b *Backend) Keys(prefix string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}

	rows, err := b.db.Query(
		"SELECT key FROM kv WHERE substr(key, 1, length(?1)) = ?1 ORDER BY key ASC",
		prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating keys: %w", err)
	}
	return keys, nil
}

// persistJSONL reads every row visible to tx and writes kv.jsonl atomically.
// The caller must hold b.mu.
func (b *Backend) persistJSONL(tx *sql.Tx) error {
	rows, err := tx.Query("SELECT key, value, updated_at FROM kv ORDER BY key ASC")
	if err != nil {
		return fmt.Errorf("querying kv for JSONL: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var rec kvRecord
		var value string
		if err := rows.Scan(&rec.Key, &value, &rec.UpdatedAt); err != nil {
			return fmt.Errorf("scanning kv for JSONL: %w", err)
		}
		rec.Value = json.RawMessage(value)
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling kv record %s: %w", rec.Key, err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating kv for JSONL: %w", err)
	}

	return writeJSONL(b.jsonlPath(), records)
}
