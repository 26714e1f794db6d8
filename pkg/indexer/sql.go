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

package indexer

import (
	"context"
	"fmt"
	"sort"

	"github.com/kadirpekel/semhub/pkg/filterlang"
	"github.com/kadirpekel/semhub/pkg/store"
	"github.com/kadirpekel/semhub/pkg/vecmath"
)

// SQLIndexer is the "sql" backend: the index *is* the items table in
// pkg/store, so Recreate/IndexItems/Cleanup only need to clear dirty
// flags; Search loads the collection's items and scores/filters/sorts them
// in Go. This is the right-sized backend for collections small enough to
// scan in memory — the qdrant backend exists for everything else.
type SQLIndexer struct {
	db           *store.Store
	collectionID int64
	dimension    int
}

// NewSQLIndexer builds a SQLIndexer for one collection.
func NewSQLIndexer(db *store.Store, collectionID int64, dimension int) *SQLIndexer {
	return &SQLIndexer{db: db, collectionID: collectionID, dimension: dimension}
}

// Recreate clears every item's index_dirty flag for an eventual full
// reindex; there is no separate index schema to drop since the items table
// already holds the authoritative field/vector data.
func (s *SQLIndexer) Recreate(ctx context.Context) error {
	items, err := s.db.ListItems(ctx, s.collectionID)
	if err != nil {
		return fmt.Errorf("recreate: list items: %w", err)
	}
	for _, item := range items {
		if err := s.db.ClearIndexDirty(ctx, item.ID); err != nil {
			return fmt.Errorf("recreate: clear index_dirty for item %d: %w", item.ID, err)
		}
	}
	return nil
}

// IndexItems clears index_dirty for the named items (or every dirty item
// if externalIDs is empty).
func (s *SQLIndexer) IndexItems(ctx context.Context, externalIDs []string) error {
	if len(externalIDs) == 0 {
		items, err := s.db.ListDirtyIndex(ctx, s.collectionID, 100000)
		if err != nil {
			return fmt.Errorf("index items: list dirty: %w", err)
		}
		for _, item := range items {
			if err := s.db.ClearIndexDirty(ctx, item.ID); err != nil {
				return fmt.Errorf("index items: %w", err)
			}
		}
		return nil
	}
	for _, externalID := range externalIDs {
		item, err := s.db.GetItem(ctx, s.collectionID, externalID)
		if err != nil {
			return fmt.Errorf("index item %q: %w", externalID, err)
		}
		if err := s.db.ClearIndexDirty(ctx, item.ID); err != nil {
			return fmt.Errorf("index item %q: %w", externalID, err)
		}
	}
	return nil
}

// Cleanup is a no-op for the sql backend: membership reconciliation
// between "the store" and "the index" is meaningless when they're the
// same table.
func (s *SQLIndexer) Cleanup(ctx context.Context) error {
	return nil
}

func (s *SQLIndexer) Close() error { return nil }

type scoredHit struct {
	hit   IndexHit
	score float64
}

// Search implements the §4.5 search algorithm over an in-memory scan of
// the collection's items.
func (s *SQLIndexer) Search(ctx context.Context, params SearchParams) ([]IndexHit, error) {
	if params.Vector != nil && s.dimension != 0 && len(params.Vector) != s.dimension {
		return nil, &DimensionMismatch{Got: len(params.Vector), Want: s.dimension}
	}
	if params.Limit == 0 {
		return []IndexHit{}, nil
	}

	items, err := s.db.ListItems(ctx, s.collectionID)
	if err != nil {
		return nil, fmt.Errorf("search: list items: %w", err)
	}

	exclude := make(map[string]bool, len(params.ExcludeExternalIDs))
	for _, id := range params.ExcludeExternalIDs {
		exclude[id] = true
	}

	var scored []scoredHit
	for _, item := range items {
		if exclude[item.ExternalID] {
			continue
		}
		if !filterlang.Matches(params.Filter, item.Fields) {
			continue
		}

		hasVector := len(params.Vector) > 0
		hasText := params.TextQuery != ""

		var score float64
		switch {
		case hasVector && hasText:
			if len(item.Vector) != len(params.Vector) {
				continue
			}
			score = vecmath.CosineSimilarity(params.Vector, item.Vector) + scoreText(params.TextQuery, item.Description)
		case hasVector:
			if len(item.Vector) != len(params.Vector) {
				continue
			}
			score = vecmath.CosineSimilarity(params.Vector, item.Vector)
		case hasText:
			score = scoreText(params.TextQuery, item.Description)
			if score == 0 {
				continue
			}
		default:
			score = 1
		}

		if score < params.ScoreThreshold {
			continue
		}

		scored = append(scored, scoredHit{
			hit:   IndexHit{ExternalID: item.ExternalID, Similarity: score, Description: item.Description},
			score: score,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	start := params.Offset
	if start > len(scored) {
		start = len(scored)
	}
	end := len(scored)
	if params.Limit > 0 && start+params.Limit < end {
		end = start + params.Limit
	}

	out := make([]IndexHit, 0, end-start)
	for _, s := range scored[start:end] {
		out = append(out, s.hit)
	}
	return out, nil
}

var _ Indexer = (*SQLIndexer)(nil)
