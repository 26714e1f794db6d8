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

// Package suggest implements the §4.11 Suggestor: composing autocomplete,
// search and aggregate suggestion sources into one deduped, limit-bounded
// list of field maps.
package suggest

import (
	"context"
	"fmt"

	"github.com/kadirpekel/semhub/pkg/aggregate"
	"github.com/kadirpekel/semhub/pkg/hashutil"
	"github.com/kadirpekel/semhub/pkg/search"
)

// Config is one suggestion request. Each source is optional; sources run
// in autocomplete -> search -> aggregate order and stop contributing once
// Limit suggestions have accumulated.
type Config struct {
	Limit        int                 `json:"limit,omitempty"`
	Person       string              `json:"person,omitempty"`
	Autocomplete *AutocompleteConfig `json:"autocomplete,omitempty"`
	Search       *search.Config      `json:"search,omitempty"`
	Aggregate    *aggregate.Config   `json:"aggregate,omitempty"`
}

// Suggestor composes the autocomplete, search and aggregate sources.
type Suggestor struct {
	Autocompletor *Autocompletor
	Searcher      *search.Searcher
	Aggregator    *aggregate.Aggregator
}

// Suggest implements §4.11: merge suggestions from up to three sources in
// order, deduping by JSON-equal field maps against the accumulator, and
// truncating to Limit at the end.
func (s *Suggestor) Suggest(ctx context.Context, cfg Config, reqCtx map[string]any) ([]map[string]any, error) {
	acc := &accumulator{seen: map[string]bool{}}

	if cfg.Autocomplete != nil && s.Autocompletor != nil {
		items, err := s.Autocompletor.Suggest(ctx, *cfg.Autocomplete, reqCtx)
		if err != nil {
			return nil, fmt.Errorf("suggest: autocomplete: %w", err)
		}
		acc.add(items...)
	}

	if cfg.Search != nil && s.Searcher != nil {
		items, _, err := s.Searcher.Search(ctx, *cfg.Search, cfg.Person, reqCtx)
		if err != nil {
			return nil, fmt.Errorf("suggest: search: %w", err)
		}
		fields := make([]map[string]any, len(items))
		for i, item := range items {
			fields[i] = item.Fields
		}
		acc.add(fields...)
	}

	if cfg.Aggregate != nil && s.Aggregator != nil {
		results, err := s.Aggregator.Aggregate(ctx, *cfg.Aggregate)
		if err != nil {
			return nil, fmt.Errorf("suggest: aggregate: %w", err)
		}
		for _, result := range results {
			acc.add(result.Items...)
		}
	}

	out := acc.items
	if cfg.Limit > 0 && len(out) > cfg.Limit {
		out = out[:cfg.Limit]
	}
	return out, nil
}

// accumulator dedupes field maps by their canonical-JSON hash.
type accumulator struct {
	seen  map[string]bool
	items []map[string]any
}

func (a *accumulator) add(fields ...map[string]any) {
	for _, f := range fields {
		key, err := hashutil.Stable(f)
		if err != nil || a.seen[key] {
			continue
		}
		a.seen[key] = true
		a.items = append(a.items, f)
	}
}
