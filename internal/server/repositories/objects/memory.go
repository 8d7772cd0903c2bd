package objects

import (
	"bytes"
	"context"
	"sync"

	"github.com/dmitrijs2005/fragkeeper/internal/common"
	"github.com/dmitrijs2005/fragkeeper/internal/server/models"
)

// MemoryRepository keeps records in a map. Used in tests and for
// single-process deployments without persistence.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]models.ObjectMetadata
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]models.ObjectMetadata)}
}

func (r *MemoryRepository) Put(ctx context.Context, meta *models.ObjectMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[meta.ObjectID]; ok {
		return common.ErrObjectExists
	}
	rec := *meta
	rec.WrappedKey = bytes.Clone(meta.WrappedKey)
	r.records[meta.ObjectID] = rec
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, objectID string) (*models.ObjectMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[objectID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	rec.WrappedKey = bytes.Clone(rec.WrappedKey)
	return &rec, nil
}
