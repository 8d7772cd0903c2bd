package objects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fragkeeper/internal/common"
	"github.com/dmitrijs2005/fragkeeper/internal/dbx"
	"github.com/dmitrijs2005/fragkeeper/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Put inserts a metadata row. An existing row with the same object_id is
// left untouched and common.ErrObjectExists is returned.
func (r *PostgresRepository) Put(ctx context.Context, meta *models.ObjectMetadata) error {
	query := `
		INSERT INTO objects (object_id, owner_id, key_mode, wrapped_key, created_at, fragment_count, size)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (object_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query,
		meta.ObjectID, meta.OwnerID, meta.KeyMode, meta.WrappedKey, meta.CreatedAt, meta.FragmentCount, meta.Size)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrObjectExists
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// Get returns the metadata row for objectID.
func (r *PostgresRepository) Get(ctx context.Context, objectID string) (*models.ObjectMetadata, error) {
	query := `
		SELECT object_id, owner_id, key_mode, wrapped_key, created_at, fragment_count, size
		FROM objects WHERE object_id = $1
	`
	meta := &models.ObjectMetadata{}
	err := r.db.QueryRowContext(ctx, query, objectID).Scan(
		&meta.ObjectID, &meta.OwnerID, &meta.KeyMode, &meta.WrappedKey, &meta.CreatedAt, &meta.FragmentCount, &meta.Size)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select object: %w", err)
	}
	meta.CreatedAt = meta.CreatedAt.UTC()
	return meta, nil
}
