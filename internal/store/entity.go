package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"iter"

	"github.com/dgraph-io/badger/v4"
)

// Entity provides generic CRUD for one collection of domain type T.
type Entity[T any] struct {
	store      *Store
	collection string
	prefix     string
}

// NewEntity creates the typed accessor for a collection.
func NewEntity[T any](s *Store, collection string) *Entity[T] {
	return &Entity[T]{
		store:      s,
		collection: collection,
		prefix:     collection + ":",
	}
}

// Collection returns the collection name this entity reads and writes.
func (e *Entity[T]) Collection() string {
	return e.collection
}

// Get retrieves a record by ID. Returns ErrNotFound if absent.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity T
	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(e.prefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return storageErr("get", err)
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &entity); err != nil {
				return storageErr("decode", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// Put upserts a record under the given ID. Each put is independently
// durable as soon as it returns; there is no multi-record transaction
// wrapping callers.
func (e *Entity[T]) Put(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return storageErr("encode", err)
	}

	err = e.store.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(e.prefix+id), data)
	})
	if err != nil {
		return storageErr("put", err)
	}
	return nil
}

// Create inserts a record, failing with ErrAlreadyExists if the ID is
// taken.
func (e *Entity[T]) Create(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return storageErr("encode", err)
	}

	key := []byte(e.prefix + id)
	err = e.store.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return storageErr("create", err)
		}
		return txn.Set(key, data)
	})
	return err
}

// Delete removes a record by ID. Idempotent: deleting an absent record
// is not an error.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := e.store.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(e.prefix + id))
	})
	if err != nil {
		return storageErr("delete", err)
	}
	return nil
}

// List returns an iterator over every record in the collection.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		prefix := []byte(e.prefix)
		_ = e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				if ctx.Err() != nil {
					yield(nil, ctx.Err())
					return ctx.Err()
				}

				var entity T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				})
				if err != nil {
					yield(nil, storageErr("decode", err))
					return err
				}
				if !yield(&entity, nil) {
					return nil // consumer stopped early
				}
			}
			return nil
		})
	}
}

// All collects every record in the collection into a slice.
func (e *Entity[T]) All(ctx context.Context) ([]*T, error) {
	var out []*T
	for entity, err := range e.List(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}

// Count returns the number of records in the collection.
func (e *Entity[T]) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	n := 0
	prefix := []byte(e.prefix)
	err := e.store.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, storageErr("count", err)
	}
	return n, nil
}
