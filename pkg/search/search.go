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

// Package search implements the §4.9 Searcher facade: cache lookup,
// exclude-list/filter assembly, a Similarity Engine call, ranking, and
// Search-History persistence.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kadirpekel/semhub/pkg/apperror"
	"github.com/kadirpekel/semhub/pkg/cache"
	"github.com/kadirpekel/semhub/pkg/filterlang"
	"github.com/kadirpekel/semhub/pkg/hashutil"
	"github.com/kadirpekel/semhub/pkg/query"
	"github.com/kadirpekel/semhub/pkg/rank"
	"github.com/kadirpekel/semhub/pkg/similarity"
	"github.com/kadirpekel/semhub/pkg/store"
)

// RandomRank is the sentinel Config.RankExpression value selecting
// RandomRanker instead of a compiled ScoreRanker expression.
const RandomRank = "__random__"

// Config is one search request, hashable/cacheable as-is (no function
// values) so it can be embedded verbatim in the cache key and the
// persisted Search-History row.
type Config struct {
	Queries        []query.Clause   `json:"queries"`
	Exclude        []query.Clause   `json:"exclude,omitempty"`
	Filter         map[string]any   `json:"filter,omitempty"`
	Filters        []map[string]any `json:"filters,omitempty"`
	Export         any              `json:"export,omitempty"`
	Limit          int              `json:"limit"`
	Offset         int              `json:"offset,omitempty"`
	RankExpression string           `json:"rank_expression,omitempty"`
	RankTopN       int              `json:"rank_topn,omitempty"`
	CacheEnabled   bool             `json:"-"`
	CacheTTLMs     int64            `json:"-"`
}

// Searcher is the per-collection facade wiring the Query Parser, the
// Similarity Engine, the Ranker and Search-History persistence together.
type Searcher struct {
	Engine       *similarity.Engine
	Store        *store.Store
	Cache        cache.Cache
	CollectionID int64
	QueryDeps    query.Deps
}

// Search implements §4.9 steps 1-7. The returned int64 is the id of the
// Search-History row this call appended (0 if the cache served the
// response, or if the history write itself failed).
func (s *Searcher) Search(ctx context.Context, cfg Config, person string, reqCtx map[string]any) ([]similarity.SearchItem, int64, error) {
	key, err := cacheKey(s.CollectionID, cfg, reqCtx)
	if err != nil {
		return nil, 0, fmt.Errorf("search: build cache key: %w", err)
	}

	if cfg.CacheEnabled && s.Cache != nil {
		if cached, ok := s.Cache.Get(ctx, key); ok {
			var items []similarity.SearchItem
			if err := json.Unmarshal(cached, &items); err == nil {
				return items, 0, nil
			}
		}
	}

	excludeParsed, err := query.Parse(ctx, cfg.Exclude, reqCtx, s.QueryDeps)
	if err != nil {
		return nil, 0, fmt.Errorf("search: parse exclude clauses: %w", err)
	}

	queryParsed, err := query.Parse(ctx, cfg.Queries, reqCtx, s.QueryDeps)
	if err != nil {
		return nil, 0, fmt.Errorf("search: parse query clauses: %w", err)
	}

	configFilter, err := parseConfigFilters(cfg)
	if err != nil {
		return nil, 0, err
	}
	filters := make([]*filterlang.Filter, 0, 2)
	if configFilter != nil {
		filters = append(filters, configFilter)
	}
	if queryParsed.Filter != nil {
		filters = append(filters, queryParsed.Filter)
	}

	items, err := s.Engine.Search(ctx, similarity.Input{
		Vectors:            queryParsed.Vectors,
		Texts:              queryParsed.Texts,
		Filter:             filterlang.And(filters...),
		ExcludeExternalIDs: excludeParsed.ItemIDs,
		Export:             cfg.Export,
		Limit:              cfg.Limit,
		RankTopN:           cfg.RankTopN,
		Offset:             cfg.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("search: similarity engine: %w", err)
	}

	ranker, err := buildRanker(cfg.RankExpression)
	if err != nil {
		return nil, 0, fmt.Errorf("search: build ranker: %w", err)
	}
	ranked, err := applyRanker(ranker, items, cfg.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("search: apply ranker: %w", err)
	}

	externalIDs := make([]string, len(ranked))
	for i, item := range ranked {
		externalIDs[i] = item.ExternalID
	}
	var historyID int64
	configSnapshot, err := configToMap(cfg)
	if err == nil {
		if entry, err := s.Store.AppendSearchHistory(ctx, s.CollectionID, person, externalIDs, configSnapshot); err == nil {
			historyID = entry.ID
		}
	}

	if cfg.CacheEnabled && s.Cache != nil {
		if payload, err := json.Marshal(ranked); err == nil {
			s.Cache.Set(ctx, key, payload, msToDuration(cfg.CacheTTLMs))
		}
	}

	return ranked, historyID, nil
}

// parseConfigFilters implements §4.9 step 3 ("merge config.filter into
// config.filters") plus the §6 filter grammar: cfg.Filter and every element
// of cfg.Filters are each a full and/or/not/leaf tree, ANDed together.
func parseConfigFilters(cfg Config) (*filterlang.Filter, error) {
	trees := make([]*filterlang.Filter, 0, 1+len(cfg.Filters))
	if len(cfg.Filter) > 0 {
		f, err := filterlang.ParseJSON(cfg.Filter)
		if err != nil {
			return nil, &apperror.ValidationError{Fields: map[string]string{"filter": err.Error()}}
		}
		trees = append(trees, f)
	}
	for i, raw := range cfg.Filters {
		f, err := filterlang.ParseJSON(raw)
		if err != nil {
			return nil, &apperror.ValidationError{Fields: map[string]string{fmt.Sprintf("filters[%d]", i): err.Error()}}
		}
		trees = append(trees, f)
	}
	return filterlang.And(trees...), nil
}

func buildRanker(expression string) (rank.Ranker, error) {
	if expression == RandomRank {
		return &rank.RandomRanker{}, nil
	}
	return rank.NewScoreRanker(expression)
}

// applyRanker re-sorts/truncates items via ranker, preserving each item's
// identity through the generic rank.Ranker boundary.
func applyRanker(ranker rank.Ranker, items []similarity.SearchItem, limit int) ([]similarity.SearchItem, error) {
	boxed := make([]any, len(items))
	scores := make([]rank.Scored, len(items))
	for i, item := range items {
		boxed[i] = item
		scores[i] = rank.Scored{Score: item.Score, ScoreByName: item.Scores}
	}
	out, err := ranker.Rank(boxed, scores, limit)
	if err != nil {
		return nil, err
	}
	result := make([]similarity.SearchItem, len(out))
	for i, v := range out {
		result[i] = v.(similarity.SearchItem)
	}
	return result, nil
}

func cacheKey(collectionID int64, cfg Config, reqCtx map[string]any) (string, error) {
	return hashutil.Stable(struct {
		CollectionID int64          `json:"collection_id"`
		Config       Config         `json:"config"`
		Context      map[string]any `json:"context"`
	}{CollectionID: collectionID, Config: cfg, Context: reqCtx})
}

func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func configToMap(cfg Config) (map[string]any, error) {
	b, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
