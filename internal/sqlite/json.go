package sqlite

import "encoding/json"

// kvRecord is one line of kv.jsonl. Value holds the caller's JSON document
// verbatim.
type kvRecord struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt string          `json:"updated_at"`
}
