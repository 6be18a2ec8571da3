package dataset

import (
	"context"
	"sort"
	"sync"

	"tabstat/domain/core"
	"tabstat/domain/dataset"
)

// MemoryStore keeps ingested datasets for the life of the process.
// It implements ports.DatasetRepository and is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	datasets map[core.ID]*dataset.Dataset
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{datasets: make(map[core.ID]*dataset.Dataset)}
}

// Put stores ds under its ID, replacing any previous dataset wholesale
func (s *MemoryStore) Put(ctx context.Context, ds *dataset.Dataset) error {
	if ds == nil || ds.ID.IsEmpty() {
		return core.ErrEmptyDataset
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[ds.ID] = ds
	return nil
}

// GetByID returns the stored dataset or core.ErrDatasetNotFound
func (s *MemoryStore) GetByID(ctx context.Context, id core.ID) (*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.datasets[id]
	if !ok {
		return nil, core.NewDatasetNotFoundError(id)
	}
	return ds, nil
}

// List returns all datasets, oldest first
func (s *MemoryStore) List(ctx context.Context) ([]*dataset.Dataset, error) {
	s.mu.RLock()
	out := make([]*dataset.Dataset, 0, len(s.datasets))
	for _, ds := range s.datasets {
		out = append(out, ds)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes a dataset. Deleting an unknown id is core.ErrDatasetNotFound.
func (s *MemoryStore) Delete(ctx context.Context, id core.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[id]; !ok {
		return core.NewDatasetNotFoundError(id)
	}
	delete(s.datasets, id)
	return nil
}
