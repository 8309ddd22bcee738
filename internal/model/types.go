package model

import (
	"encoding/json"
	"time"
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Snapshot is one archived genome. Payload holds the alias-keyed JSON
// document produced by the genome registry; the remaining fields are the
// lineage bookkeeping of an evolutionary run.
type Snapshot struct {
	VersionedRecord
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Parents    []string        `json:"parents,omitempty"`
	Generation int             `json:"generation"`
	CreatedAt  time.Time       `json:"created_at"`
}
