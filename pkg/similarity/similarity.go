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

// Package similarity implements the §4.7 Similarity Engine: it combines
// the Query Parser's weighted vectors/texts/filter into one Indexer.Search
// call, then hydrates the returned hits from the item store into
// SearchItem values with their exported projection.
package similarity

import (
	"context"
	"fmt"
	"strings"

	"github.com/kadirpekel/semhub/pkg/filterlang"
	"github.com/kadirpekel/semhub/pkg/indexer"
	"github.com/kadirpekel/semhub/pkg/query"
	"github.com/kadirpekel/semhub/pkg/store"
	"github.com/kadirpekel/semhub/pkg/vecmath"
)

// SearchItem is a hydrated, exported search result (§4.7 step 5).
type SearchItem struct {
	ID          int64
	ExternalID  string
	Fields      map[string]store.FieldValue
	Score       float64
	Scores      map[string]float64
	Exported    any
	Description string
}

// Input is everything one Similarity Engine call needs, already resolved
// by the Query Parser and the Searcher's filter/exclude-list assembly.
type Input struct {
	Vectors            []query.WeightedVector
	Texts              []query.WeightedText
	Filter             *filterlang.Filter
	ExcludeExternalIDs []string

	// Export selects the hydrated payload shape: nil/absent -> whole
	// fields map; string -> fields[Export]; []string -> a projection map
	// over just those names.
	Export any

	Limit    int
	RankTopN int
	Offset   int
}

// Engine runs one collection's Indexer.Search and hydrates hits.
type Engine struct {
	Indexer      indexer.Indexer
	Store        *store.Store
	CollectionID int64
}

// Search implements §4.7 steps 1-5.
func (e *Engine) Search(ctx context.Context, in Input) ([]SearchItem, error) {
	vector := combineVectors(in.Vectors)
	text, scoreThreshold := combineTexts(in.Texts)
	limit := effectiveLimit(in.Limit, in.RankTopN)

	hits, err := e.Indexer.Search(ctx, indexer.SearchParams{
		Filter:             in.Filter,
		TextQuery:          text,
		Vector:             vector,
		Limit:              limit,
		Offset:             in.Offset,
		ScoreThreshold:     scoreThreshold,
		ExcludeExternalIDs: in.ExcludeExternalIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	items := make([]SearchItem, 0, len(hits))
	for _, hit := range hits {
		item, err := e.Store.GetItem(ctx, e.CollectionID, hit.ExternalID)
		if err != nil {
			continue // item deleted between index and hydration
		}
		items = append(items, SearchItem{
			ID:          item.ID,
			ExternalID:  item.ExternalID,
			Fields:      item.Fields,
			Score:       hit.Similarity,
			Scores:      item.Scores,
			Exported:    buildExported(in.Export, item.Fields),
			Description: item.Description,
		})
	}
	return items, nil
}

// combineVectors implements §4.7 step 1: elementwise weighted average,
// weights as multiplicative scales (not normalized).
func combineVectors(vectors []query.WeightedVector) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	vecs := make([][]float32, len(vectors))
	weights := make([]float64, len(vectors))
	for i, v := range vectors {
		vecs[i] = v.Vector
		weights[i] = v.Weight
	}
	return vecmath.WeightedAverage(vecs, weights)
}

// combineTexts implements §4.7 step 2: single-space concatenation and the
// minimum of the per-clause score thresholds (0 when there are no texts).
func combineTexts(texts []query.WeightedText) (string, float64) {
	if len(texts) == 0 {
		return "", 0
	}
	parts := make([]string, len(texts))
	lowest := texts[0].ScoreThreshold
	for i, t := range texts {
		parts[i] = t.Text
		if t.ScoreThreshold < lowest {
			lowest = t.ScoreThreshold
		}
	}
	return strings.Join(parts, " "), lowest
}

// effectiveLimit implements §4.7 step 4's limit composition.
func effectiveLimit(limit, rankTopN int) int {
	if rankTopN > limit {
		return rankTopN
	}
	return limit
}

// buildExported implements §4.7 step 5's export projection rule.
func buildExported(export any, fields map[string]store.FieldValue) any {
	switch e := export.(type) {
	case nil:
		return fields
	case string:
		return fields[e]
	case []string:
		proj := make(map[string]store.FieldValue, len(e))
		for _, name := range e {
			proj[name] = fields[name]
		}
		return proj
	default:
		return fields
	}
}
