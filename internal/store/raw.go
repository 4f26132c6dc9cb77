package store

import (
	"context"
	"encoding/json/v2"

	"github.com/dgraph-io/badger/v4"
)

// Raw record access for the snapshot engine. Records travel as
// map[string]any so every collection, typed or not, exports and merges
// through the same code path. Raw writes use the same "{collection}:{id}"
// keys as the typed entities.

// RawAll returns every record of a collection as decoded JSON objects.
// Empty collections return an empty slice, never nil.
func (s *Store) RawAll(ctx context.Context, collection string) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := []map[string]any{}
	prefix := []byte(collection + ":")

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var record map[string]any
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return storageErr("decode", err)
			}
			out = append(out, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RawPut stores a raw record under the given ID.
func (s *Store) RawPut(ctx context.Context, collection, id string, record map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return storageErr("encode", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(collection+":"+id), data)
	})
	if err != nil {
		return storageErr("put", err)
	}
	return nil
}

// RawDelete removes a record by ID. Idempotent.
func (s *Store) RawDelete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(collection + ":" + id))
	})
	if err != nil {
		return storageErr("delete", err)
	}
	return nil
}

// ClearCollection removes every record of a collection.
func (s *Store) ClearCollection(ctx context.Context, collection string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prefix := []byte(collection + ":")

	// Collect keys first; Badger forbids writes during iteration on the
	// same transaction.
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return storageErr("clear scan", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return storageErr("clear", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return storageErr("clear flush", err)
	}
	return nil
}
