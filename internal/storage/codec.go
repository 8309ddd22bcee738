package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"edna/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrSchemaMismatch = errors.New("snapshot version mismatch")

// NewSnapshot stamps a fresh archive record around a genome payload. The
// payload and parents slices are copied so later caller mutations do not
// leak into the record.
func NewSnapshot(typeName string, payload json.RawMessage, parents []string, generation int) model.Snapshot {
	return model.Snapshot{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: CurrentSchemaVersion,
			CodecVersion:  CurrentCodecVersion,
		},
		ID:         uuid.NewString(),
		Type:       typeName,
		Payload:    append(json.RawMessage(nil), payload...),
		Parents:    append([]string(nil), parents...),
		Generation: generation,
		CreatedAt:  time.Now().UTC(),
	}
}

func EncodeSnapshot(s model.Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeSnapshot(data []byte) (model.Snapshot, error) {
	var snapshot model.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return model.Snapshot{}, err
	}
	if err := checkVersion(snapshot.VersionedRecord); err != nil {
		return model.Snapshot{}, err
	}
	return snapshot, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return fmt.Errorf("%w: schema %d codec %d", ErrSchemaMismatch, v.SchemaVersion, v.CodecVersion)
	}
	return nil
}
