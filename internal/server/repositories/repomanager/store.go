// Package repomanager composes a metadata repository and a fragment
// repository into the ObjectStore the object service works against, and
// opens the configured backends.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/fragkeeper/internal/server/models"
	"github.com/dmitrijs2005/fragkeeper/internal/server/repositories/fragments"
	"github.com/dmitrijs2005/fragkeeper/internal/server/repositories/objects"
)

// ObjectStore is the storage surface of the object pipeline.
type ObjectStore interface {
	PutMetadata(ctx context.Context, meta *models.ObjectMetadata) error
	// GetMetadata returns common.ErrorNotFound for an unknown object.
	GetMetadata(ctx context.Context, objectID string) (*models.ObjectMetadata, error)
	PutFragment(ctx context.Context, objectID string, index int, data []byte) error
	// GetFragment returns common.ErrorNotFound for an absent fragment.
	GetFragment(ctx context.Context, objectID string, index int) ([]byte, error)
	// ListFragmentIndices returns stored indices in ascending order.
	ListFragmentIndices(ctx context.Context, objectID string) ([]int, error)
}

// Store implements ObjectStore over two repositories.
type Store struct {
	meta    objects.Repository
	frags   fragments.Repository
	closers []func() error
}

func NewStore(meta objects.Repository, frags fragments.Repository) *Store {
	return &Store{meta: meta, frags: frags}
}

func (s *Store) PutMetadata(ctx context.Context, meta *models.ObjectMetadata) error {
	return s.meta.Put(ctx, meta)
}

func (s *Store) GetMetadata(ctx context.Context, objectID string) (*models.ObjectMetadata, error) {
	return s.meta.Get(ctx, objectID)
}

func (s *Store) PutFragment(ctx context.Context, objectID string, index int, data []byte) error {
	return s.frags.Put(ctx, objectID, index, data)
}

func (s *Store) GetFragment(ctx context.Context, objectID string, index int) ([]byte, error) {
	return s.frags.Get(ctx, objectID, index)
}

func (s *Store) ListFragmentIndices(ctx context.Context, objectID string) ([]int, error) {
	return s.frags.ListIndices(ctx, objectID)
}

// Close releases backend connections in reverse opening order.
func (s *Store) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}
