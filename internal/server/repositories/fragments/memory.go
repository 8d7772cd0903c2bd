package fragments

import (
	"bytes"
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/fragkeeper/internal/common"
)

// MemoryRepository keeps fragments in nested maps.
type MemoryRepository struct {
	mu      sync.RWMutex
	objects map[string]map[int][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{objects: make(map[string]map[int][]byte)}
}

func (r *MemoryRepository) Put(ctx context.Context, objectID string, index int, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	frags, ok := r.objects[objectID]
	if !ok {
		frags = make(map[int][]byte)
		r.objects[objectID] = frags
	}
	frags[index] = bytes.Clone(data)
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, objectID string, index int) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.objects[objectID][index]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return bytes.Clone(data), nil
}

func (r *MemoryRepository) ListIndices(ctx context.Context, objectID string) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]int, 0, len(r.objects[objectID]))
	for idx := range r.objects[objectID] {
		out = append(out, idx)
	}
	slices.Sort(out)
	return out, nil
}
