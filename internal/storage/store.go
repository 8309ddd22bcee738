package storage

import (
	"context"

	"edna/internal/model"
)

// Store defines the persistence operations of the genome archive. GetSnapshot
// reports ok=false for unknown IDs instead of an error. ListSnapshots matches
// every genome type when typeName is empty and orders results by creation
// time, then by ID.
type Store interface {
	Init(ctx context.Context) error
	SaveSnapshot(ctx context.Context, snapshot model.Snapshot) error
	GetSnapshot(ctx context.Context, id string) (model.Snapshot, bool, error)
	ListSnapshots(ctx context.Context, typeName string) ([]model.Snapshot, error)
	DeleteSnapshot(ctx context.Context, id string) error
}
