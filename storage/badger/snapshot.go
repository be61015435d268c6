// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package badger implements storage.SnapshotStore on BadgerDB.
package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/seeker/storage"
)

// snapshotKey is the single key the engine snapshot lives under. The version
// suffix guards against reading a snapshot written by an incompatible
// serializer.
const snapshotKey = "snapshot:v1"

// SnapshotStore implements storage.SnapshotStore for BadgerDB.
type SnapshotStore struct {
	backend *Backend
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore opens a BadgerDB-backed snapshot store at filePath.
// With inMemory set the store lives only for the process lifetime; tests use
// that mode.
//
// Returns storage.SnapshotStore interface to enforce abstraction.
func NewSnapshotStore(filePath string, inMemory bool) (storage.SnapshotStore, error) {
	backend, err := OpenBackend(filePath, inMemory)
	if err != nil {
		return nil, err
	}
	return &SnapshotStore{backend: backend}, nil
}

// SaveSnapshot persists the snapshot, replacing any previous one.
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, snap *storage.Snapshot) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	snap.CreatedAt = time.Now().UTC()
	value := storage.MarshalSnapshot(snap)

	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(snapshotKey), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadSnapshot retrieves the most recently saved snapshot.
// Returns storage.ErrNotFound if nothing has been saved yet.
func (s *SnapshotStore) LoadSnapshot(ctx context.Context) (*storage.Snapshot, error) {
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var snap *storage.Snapshot
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(snapshotKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			snap, err = storage.UnmarshalSnapshot(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Close closes the underlying database.
func (s *SnapshotStore) Close() error {
	return s.backend.Close()
}
