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

// Package storage defines the snapshot persistence boundary.
//
// The engine keeps every index in memory; durability is limited to
// snapshotting its state to a key-value store at process boundaries. This
// package holds the Snapshot model, its binary serializers, and the
// SnapshotStore interface that backends implement.
//
// Public constructors in backend packages return the SnapshotStore interface
// so callers never couple to a concrete store:
//
//	store, err := badger.NewSnapshotStore("/path/to/db", false)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
// Tests use the in-memory mode of the badger backend instead of a mock.
package storage
