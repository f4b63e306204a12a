// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package kv is the embedded key-value store behind the local storage mode.

Each user's collections live under their own keys, one JSON array per key:

	u/{userID}/laundry-batches
	u/{userID}/laundry-custom-tags
	u/{userID}/clothes

Every mutation reads the whole array, changes it, and writes it back inside a
single badger transaction. Conflicting writers are retried.

The same database also holds expiring records (auth sessions, notification
feeds) written with [Store.SetWithTTL].
*/
package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Collection names shared by the local repositories.
const (
	CollectionBatches    = "laundry-batches"
	CollectionCustomTags = "laundry-custom-tags"
	CollectionClothes    = "clothes"
)

// maxConflictRetries bounds how often a read-modify-write is replayed after a badger conflict.
const maxConflictRetries = 5

// ErrNotFound is returned by [Store.Get] when the key does not exist.
var ErrNotFound = errors.New("kv: key not found")

// Store wraps a badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) the database directory at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // badger's own logger is noisy; events go through slog
	opts.SyncWrites = true       // the local mode is the only copy of the data
	opts.CompactL0OnClose = true // faster next start

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("kv: failed to open badger db: %w", err)
	}

	logger.Info("kv store opened", slog.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// OpenInMemory opens a throwaway database with no files on disk.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("kv: failed to open in-memory db: %w", err)
	}
	return &Store{db: db, logger: slog.Default()}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	s.logger.Info("kv store closing")
	return s.db.Close()
}

// Ping reports whether the database is open.
func (s *Store) Ping() error {
	if s.db.IsClosed() {
		return errors.New("kv: database is closed")
	}
	return nil
}

// UserKey builds the per-user key for a collection.
func UserKey(userID, collection string) []byte {
	return []byte("u/" + userID + "/" + collection)
}

// Get decodes the JSON value stored at key into dest.
func (s *Store) Get(key []byte, dest any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	return err
}

// Set stores value as JSON under key.
func (s *Store) Set(key []byte, value any) error {
	return s.SetWithTTL(key, value, 0)
}

// SetWithTTL stores value as JSON under key. A positive ttl expires the key.
func (s *Store) SetWithTTL(key []byte, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv: marshal %s: %w", key, err)
	}

	entry := badger.NewEntry(key, data)
	if ttl > 0 {
		entry = entry.WithTTL(ttl)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(entry)
	})
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// Load returns the JSON array stored at key, or an empty slice when the key is absent.
func Load[T any](s *Store, key []byte) ([]T, error) {
	var values []T
	err := s.Get(key, &values)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("kv: load %s: %w", key, err)
	}
	if values == nil {
		values = []T{}
	}
	return values, nil
}

// Modify applies fn to the array stored at key and writes the result back
// in the same transaction. An error from fn aborts the write and is returned
// unchanged.
func Modify[T any](s *Store, key []byte, fn func(values []T) ([]T, error)) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = s.db.Update(func(txn *badger.Txn) error {
			values, err := readArray[T](txn, key)
			if err != nil {
				return err
			}

			updated, err := fn(values)
			if err != nil {
				return err
			}

			data, err := json.Marshal(updated)
			if err != nil {
				return fmt.Errorf("kv: marshal %s: %w", key, err)
			}
			return txn.Set(key, data)
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.logger.Warn("kv_conflict_retry", slog.String("key", string(key)), slog.Int("attempt", attempt+1))
	}
	return fmt.Errorf("kv: modify %s: %w", key, err)
}

func readArray[T any](txn *badger.Txn, key []byte) ([]T, error) {
	values := []T{}

	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return values, nil
	}
	if err != nil {
		return nil, err
	}

	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &values)
	})
	if err != nil {
		return nil, fmt.Errorf("kv: decode %s: %w", key, err)
	}
	return values, nil
}
