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


package core

import "errors"

// Domain errors
var (
	// ErrInvalidDocument indicates a document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrMissingID indicates a document without an id was submitted for indexing.
	ErrMissingID = errors.New("document id cannot be empty")

	// ErrDocumentNotFound indicates the requested document does not exist.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDimensionMismatch indicates a vector whose length differs from the
	// dimensionality fixed at first insertion.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidOptions indicates malformed search options.
	ErrInvalidOptions = errors.New("invalid search options")

	// ErrInvalidPage indicates a negative page number.
	ErrInvalidPage = errors.New("page must be >= 0")

	// ErrInvalidHitsPerPage indicates a non-positive page size.
	ErrInvalidHitsPerPage = errors.New("hitsPerPage must be > 0")

	// ErrInvalidHighlightTags indicates only one of the pre/post highlight tags was set.
	ErrInvalidHighlightTags = errors.New("highlight tags must be set in pairs")
)
