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

// Package seeker is an in-process hybrid search and ranking engine.
//
// Given a short free-text query it returns a ranked, deduplicated,
// highlighted set of matching documents, plus low-latency autocomplete
// suggestions, by fusing exact, fuzzy, partial, and vector-similarity
// matching over in-memory indices.
//
//	engine, err := seeker.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer engine.Close()
//
//	engine.Index(&core.Document{ID: "job-1", Title: "Senior Go Engineer"})
//	result, err := engine.Search("go engineer", nil)
//
// Vectors are produced by an external embedding provider (see the ai
// package); the ingestion package connects document adapters, embedding, and
// indexing. State can be snapshotted to a durable key-value store (see
// storage and storage/badger) across restarts.
package seeker
