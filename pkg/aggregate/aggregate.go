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

// Package aggregate implements the §4.10 Aggregator: classify a free-form
// prompt against a set of configured aggregations, have an LLM produce
// structured arguments for each match, then expand "item"-typed fields
// into concrete search-grounded combinations.
package aggregate

import (
	"context"
	"fmt"

	"github.com/kadirpekel/semhub/pkg/search"
)

// Aggregator runs the Aggregator pipeline against one collection's
// Searcher, used by step 5's "item" field expansion to ground candidate
// values in real search results.
type Aggregator struct {
	Searcher *search.Searcher
}

// Aggregate implements §4.10 end to end: classify, schematize+invoke,
// sort, expand/combine, returning one Result per matched aggregation that
// produced at least one item.
func (a *Aggregator) Aggregate(ctx context.Context, cfg Config) ([]Result, error) {
	if cfg.Limit == 0 {
		cfg.Limit = 1
	}

	matched, err := classify(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("aggregate: classify: %w", err)
	}
	if len(matched) == 0 {
		return nil, nil
	}

	structured, err := invoke(ctx, cfg, matched)
	if err != nil {
		return nil, fmt.Errorf("aggregate: invoke: %w", err)
	}
	structured = sortStructuredQueries(cfg, structured)

	byName := make(map[string]*AggregationQuery, len(cfg.Aggregations))
	for i := range cfg.Aggregations {
		byName[cfg.Aggregations[i].Name] = &cfg.Aggregations[i]
	}

	itemsByName := make(map[string][]map[string]any, len(matched))
	for _, sq := range structured {
		aggregation, ok := byName[sq.AggregationName]
		if !ok {
			continue
		}

		levels, err := findExecutionLevels(aggregation.Fields)
		if err != nil {
			return nil, fmt.Errorf("aggregate: %s: %w", aggregation.Name, err)
		}

		e := &expander{
			ctx:        ctx,
			searcher:   a.Searcher,
			structured: sq.Arguments,
			fields:     aggregation.Fields,
			levels:     levels,
		}
		items, err := e.generate(map[string]any{}, 0)
		if err != nil {
			return nil, fmt.Errorf("aggregate: %s: expand: %w", aggregation.Name, err)
		}
		addNonDynamicFields(aggregation.Fields, items)
		itemsByName[aggregation.Name] = append(itemsByName[aggregation.Name], items...)
	}

	var results []Result
	seen := make(map[string]bool, len(matched))
	for _, name := range matched {
		if seen[name] {
			continue
		}
		seen[name] = true
		items, ok := itemsByName[name]
		if !ok {
			continue
		}
		results = append(results, Result{Name: name, Items: items})
	}
	return results, nil
}
