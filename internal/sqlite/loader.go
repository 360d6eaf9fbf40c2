// This file loads kv.jsonl into SQLite on Attach.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"
)

// loadKVJSONL reads kv.jsonl from dataDir and inserts every record into the
// kv table. Loading is transactional: all records load or the table stays
// empty. Lines that are not JSON, records without a key, and records whose
// value is not valid JSON are skipped and counted. Unknown fields are
// ignored. When a key appears more than once the last record wins.
func loadKVJSONL(db *sql.DB, dataDir string) (int, error) {
	records, skipped, err := readJSONL(filepath.Join(dataDir, kvJSONL))
	if err != nil {
		return skipped, err
	}
	if len(records) == 0 {
		return skipped, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return skipped, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?) " +
			"ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at",
	)
	if err != nil {
		return skipped, fmt.Errorf("preparing kv insert: %w", err)
	}
	defer stmt.Close()

	for _, raw := range records {
		var rec kvRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			skipped++
			continue
		}
		if rec.Key == "" || len(rec.Value) == 0 || !json.Valid(rec.Value) {
			skipped++
			continue
		}
		if rec.UpdatedAt == "" {
			rec.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
		}
		if _, err := stmt.Exec(rec.Key, string(rec.Value), rec.UpdatedAt); err != nil {
			skipped++
			continue
		}
	}

	if err := tx.Commit(); err != nil {
		return skipped, fmt.Errorf("committing load transaction: %w", err)
	}
	return skipped, nil
}
