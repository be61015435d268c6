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

// Package ai defines the embedding abstraction used for semantic search.
//
// The engine never produces vectors itself; an external provider does. This
// package keeps that boundary explicit: search and ingestion code depend on
// the Embedder interface, never on a concrete client.
//
// Two implementation sub-packages are provided:
//
//   - ai/openai: production implementation for OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external services
//
// Production constructors return the Embedder interface to enforce the
// abstraction; mock constructors return concrete types so tests can inject
// behavior and assert on call counts.
package ai
