package fragments

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/fragkeeper/internal/common"
)

// BadgerRepository stores fragments under frag/<id>/<idx>, the index
// zero-padded to eight digits so keys sort by index.
type BadgerRepository struct {
	db *badger.DB
}

func NewBadgerRepository(db *badger.DB) *BadgerRepository {
	return &BadgerRepository{db: db}
}

func badgerPrefix(objectID string) []byte {
	return []byte("frag/" + objectID + "/")
}

func badgerKey(objectID string, index int) []byte {
	return fmt.Appendf(badgerPrefix(objectID), "%08d", index)
}

func (r *BadgerRepository) Put(ctx context.Context, objectID string, index int, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(objectID, index), bytes.Clone(data))
	})
}

func (r *BadgerRepository) Get(ctx context.Context, objectID string, index int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(objectID, index))
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
	return data, nil
}

func (r *BadgerRepository) ListIndices(ctx context.Context, objectID string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := badgerPrefix(objectID)
	var raw []string
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			raw = append(raw, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger error: %w", err)
	}
	return parseIndices(raw)
}
