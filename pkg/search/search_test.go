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

package search

import (
	"errors"
	"testing"

	"github.com/kadirpekel/semhub/pkg/apperror"
	"github.com/kadirpekel/semhub/pkg/filterlang"
	"github.com/kadirpekel/semhub/pkg/rank"
	"github.com/kadirpekel/semhub/pkg/similarity"
)

func TestBuildRankerDefaultsToScoreExpression(t *testing.T) {
	r, err := buildRanker("")
	if err != nil {
		t.Fatalf("buildRanker(\"\") error = %v", err)
	}
	if _, ok := r.(*rank.ScoreRanker); !ok {
		t.Errorf("buildRanker(\"\") = %T, want *rank.ScoreRanker", r)
	}
}

func TestBuildRankerRandomSentinel(t *testing.T) {
	r, err := buildRanker(RandomRank)
	if err != nil {
		t.Fatalf("buildRanker(RandomRank) error = %v", err)
	}
	if _, ok := r.(*rank.RandomRanker); !ok {
		t.Errorf("buildRanker(RandomRank) = %T, want *rank.RandomRanker", r)
	}
}

func TestApplyRankerPreservesItemIdentity(t *testing.T) {
	items := []similarity.SearchItem{
		{ExternalID: "a", Score: 0.1},
		{ExternalID: "b", Score: 0.9},
	}
	ranker, err := buildRanker("")
	if err != nil {
		t.Fatalf("buildRanker error = %v", err)
	}
	out, err := applyRanker(ranker, items, 0)
	if err != nil {
		t.Fatalf("applyRanker error = %v", err)
	}
	if len(out) != 2 || out[0].ExternalID != "b" {
		t.Errorf("applyRanker() = %v, want [b a]", out)
	}
}

func TestCacheKeyDeterministic(t *testing.T) {
	cfg := Config{Limit: 5, Filter: map[string]any{"category": "shoes"}}
	ctx := map[string]any{"person": "p1"}
	k1, err := cacheKey(42, cfg, ctx)
	if err != nil {
		t.Fatalf("cacheKey error = %v", err)
	}
	k2, err := cacheKey(42, cfg, ctx)
	if err != nil {
		t.Fatalf("cacheKey error = %v", err)
	}
	if k1 != k2 {
		t.Errorf("cacheKey() not deterministic: %q != %q", k1, k2)
	}
}

func TestCacheKeyVariesWithCollection(t *testing.T) {
	cfg := Config{Limit: 5}
	k1, _ := cacheKey(1, cfg, nil)
	k2, _ := cacheKey(2, cfg, nil)
	if k1 == k2 {
		t.Errorf("expected different cache keys for different collection ids")
	}
}

func TestConfigToMapRoundTrips(t *testing.T) {
	cfg := Config{Limit: 3, RankExpression: "score"}
	m, err := configToMap(cfg)
	if err != nil {
		t.Fatalf("configToMap error = %v", err)
	}
	if m["limit"].(float64) != 3 {
		t.Errorf("configToMap()[limit] = %v, want 3", m["limit"])
	}
	if m["rank_expression"] != "score" {
		t.Errorf("configToMap()[rank_expression] = %v, want %q", m["rank_expression"], "score")
	}
}

func TestParseConfigFiltersANDsFilterAndFilters(t *testing.T) {
	cfg := Config{
		Filter: map[string]any{"category": "shoes"},
		Filters: []map[string]any{
			{"price": map[string]any{"gte": 10.0}},
		},
	}
	f, err := parseConfigFilters(cfg)
	if err != nil {
		t.Fatalf("parseConfigFilters error = %v", err)
	}
	if !filterlang.Matches(f, map[string]any{"category": "shoes", "price": 20.0}) {
		t.Error("expected match: both filter and filters[0] satisfied")
	}
	if filterlang.Matches(f, map[string]any{"category": "shoes", "price": 5.0}) {
		t.Error("expected no match: price below filters[0]'s gte bound")
	}
}

func TestParseConfigFiltersSupportsAndOrNotTree(t *testing.T) {
	cfg := Config{
		Filter: map[string]any{
			"or": []any{
				map[string]any{"category": "shoes"},
				map[string]any{"category": "boots"},
			},
		},
	}
	f, err := parseConfigFilters(cfg)
	if err != nil {
		t.Fatalf("parseConfigFilters error = %v", err)
	}
	if !filterlang.Matches(f, map[string]any{"category": "boots"}) {
		t.Error("expected match via the or branch")
	}
	if filterlang.Matches(f, map[string]any{"category": "hats"}) {
		t.Error("expected no match")
	}
}

func TestParseConfigFiltersReturnsValidationErrorOnBadGrammar(t *testing.T) {
	cfg := Config{Filter: map[string]any{"price": map[string]any{"bogus": 1}}}
	_, err := parseConfigFilters(cfg)
	var ve *apperror.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("parseConfigFilters error = %v, want *apperror.ValidationError", err)
	}
}
