package objects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/fragkeeper/internal/common"
	"github.com/dmitrijs2005/fragkeeper/internal/server/models"
)

// BadgerRepository stores records as JSON under meta/<object id>.
type BadgerRepository struct {
	db *badger.DB
}

func NewBadgerRepository(db *badger.DB) *BadgerRepository {
	return &BadgerRepository{db: db}
}

func badgerKey(objectID string) []byte {
	return []byte("meta/" + objectID)
}

func (r *BadgerRepository) Put(ctx context.Context, meta *models.ObjectMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	key := badgerKey(meta.ObjectID)
	return r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		switch {
		case err == nil:
			return common.ErrObjectExists
		case !errors.Is(err, badger.ErrKeyNotFound):
			return fmt.Errorf("badger error: %w", err)
		}
		return txn.Set(key, data)
	})
}

func (r *BadgerRepository) Get(ctx context.Context, objectID string) (*models.ObjectMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(objectID))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badger error: %w", err)
	}

	meta := &models.ObjectMetadata{}
	if err := json.Unmarshal(data, meta); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return meta, nil
}
