package sqlite

import (
	"database/sql"
	"fmt"
)

// Schema DDL for the key-value table.
const (
	createKV = `CREATE TABLE kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	idxKVUpdated = `CREATE INDEX idx_kv_updated ON kv(updated_at);`
)

// schemaDDL lists all CREATE statements in execution order.
var schemaDDL = []string{
	createKV,
	idxKVUpdated,
}

// createSchema executes every statement in schemaDDL.
func createSchema(db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}
