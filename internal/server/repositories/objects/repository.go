// Package objects stores object metadata records. Backends: PostgreSQL,
// Redis, Badger and an in-memory map.
package objects

import (
	"context"

	"github.com/dmitrijs2005/fragkeeper/internal/server/models"
)

// Repository persists object metadata. Records are write-once: Put returns
// common.ErrObjectExists when the object id is taken, Get returns
// common.ErrorNotFound for unknown ids.
type Repository interface {
	Put(ctx context.Context, meta *models.ObjectMetadata) error
	Get(ctx context.Context, objectID string) (*models.ObjectMetadata, error)
}
