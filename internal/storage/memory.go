package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"edna/internal/model"
)

var errNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	snapshots   map[string]model.Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.initialized = true
	s.snapshots = make(map[string]model.Snapshot)
	return nil
}

func (s *MemoryStore) SaveSnapshot(_ context.Context, snapshot model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.snapshots[snapshot.ID] = copySnapshot(snapshot)
	return nil
}

func (s *MemoryStore) GetSnapshot(_ context.Context, id string) (model.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.Snapshot{}, false, errNotInitialized
	}
	snapshot, ok := s.snapshots[id]
	if !ok {
		return model.Snapshot{}, false, nil
	}
	return copySnapshot(snapshot), true, nil
}

func (s *MemoryStore) ListSnapshots(_ context.Context, typeName string) ([]model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, errNotInitialized
	}
	snapshots := make([]model.Snapshot, 0, len(s.snapshots))
	for _, snapshot := range s.snapshots {
		if typeName != "" && snapshot.Type != typeName {
			continue
		}
		snapshots = append(snapshots, copySnapshot(snapshot))
	}
	sort.Slice(snapshots, func(i, j int) bool {
		if !snapshots[i].CreatedAt.Equal(snapshots[j].CreatedAt) {
			return snapshots[i].CreatedAt.Before(snapshots[j].CreatedAt)
		}
		return snapshots[i].ID < snapshots[j].ID
	})
	return snapshots, nil
}

func (s *MemoryStore) DeleteSnapshot(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	delete(s.snapshots, id)
	return nil
}

// copySnapshot detaches the stored record from caller-held slices.
func copySnapshot(snapshot model.Snapshot) model.Snapshot {
	copied := snapshot
	copied.Payload = append(json.RawMessage(nil), snapshot.Payload...)
	copied.Parents = append([]string(nil), snapshot.Parents...)
	return copied
}
