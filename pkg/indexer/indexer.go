// Copyright 2025 Kadir Pekel
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

// Package indexer implements the per-collection search index: two
// pluggable backends (sql, qdrant) behind one Indexer interface, per §4.5.
package indexer

import (
	"context"

	"github.com/kadirpekel/semhub/pkg/apperror"
	"github.com/kadirpekel/semhub/pkg/filterlang"
)

// DimensionMismatch aliases the shared §7 error taxonomy (§9 ConfigError
// family) so Search's dimension check surfaces as a 422 through
// pkg/httpapi without a package-local error type of its own.
type DimensionMismatch = apperror.DimensionMismatch

// IndexHit is one match returned by Search: an item's external id, its
// similarity/score in the backend's native scale, and its description.
type IndexHit struct {
	ExternalID  string
	Similarity  float64
	Description string
}

// SearchParams carries the composed arguments for one Indexer.Search call,
// built by the Similarity Engine (§4.7).
type SearchParams struct {
	Filter             *filterlang.Filter
	TextQuery          string
	Vector             []float32
	Limit              int
	Offset             int
	ScoreThreshold     float64
	ExcludeExternalIDs []string
}

// Indexer is the per-collection search index contract (§4.5).
type Indexer interface {
	// Recreate drops any index state, re-creates the schema for the
	// collection's configured fields/dimension, then bulk-indexes every
	// item currently in the store.
	Recreate(ctx context.Context) error

	// IndexItems upserts the given items into the index. A nil/empty slice
	// means "all items in the collection".
	IndexItems(ctx context.Context, externalIDs []string) error

	// Cleanup reconciles index membership with the item store by indexing
	// every item present in the store. The qdrant backend does not delete
	// documents whose item is gone; the sql backend has no separate
	// documents, so its Cleanup does nothing.
	Cleanup(ctx context.Context) error

	// Search runs the composed filter/text/vector query and returns hits
	// ordered highest score first: cosine similarity for a vector query,
	// plus, in the sql backend, its phrase/prefix/fuzzy text score (the
	// qdrant backend has no text score).
	Search(ctx context.Context, params SearchParams) ([]IndexHit, error)

	Close() error
}
