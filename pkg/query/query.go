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

// Package query parses an ordered list of Query Parser clauses (§4.6) into
// weighted vectors, weighted text queries, a merged filter and item-id
// lists, resolving $var references against a request context along the
// way.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kadirpekel/semhub/pkg/config"
	"github.com/kadirpekel/semhub/pkg/embedders"
	"github.com/kadirpekel/semhub/pkg/filterlang"
	"github.com/kadirpekel/semhub/pkg/llms"
	"github.com/kadirpekel/semhub/pkg/stemmer"
	"github.com/kadirpekel/semhub/pkg/store"
)

// Duration is a time.Duration that unmarshals from the duration-string
// format the rest of the config surface uses ("24h", "30d") as well as a
// plain JSON number of nanoseconds.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := config.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("time_window: %w", err)
		}
		*d = Duration(parsed)
		return nil
	}
	var ns int64
	if err := json.Unmarshal(data, &ns); err != nil {
		return fmt.Errorf("time_window: not a duration string or integer nanoseconds")
	}
	*d = Duration(ns)
	return nil
}

// WeightedVector is one vector contribution with its clause weight.
type WeightedVector struct {
	Vector []float32
	Weight float64
}

// WeightedText is one text contribution with its clause weight and
// optional score threshold.
type WeightedText struct {
	Text           string
	Weight         float64
	ScoreThreshold float64
}

// Clause is a discriminated union over the ten Query Parser variants.
// Exactly one field is non-nil.
type Clause struct {
	Text                   *TextClause                   `json:"text,omitempty"`
	PromptToVector         *PromptToVectorClause         `json:"prompt_to_vector,omitempty"`
	ItemToVector           *ItemToVectorClause           `json:"item_to_vector,omitempty"`
	PersonToVector         *PersonToVectorClause         `json:"person_to_vector,omitempty"`
	FieldsToVector         *FieldsToVectorClause         `json:"fields_to_vector,omitempty"`
	Embeddings             *EmbeddingsClause              `json:"embeddings,omitempty"`
	ItemToItems            *ItemToItemsClause             `json:"item_to_items,omitempty"`
	PersonToItems          *PersonToItemsClause           `json:"person_to_items,omitempty"`
	RecommendationsToItems *RecommendationsToItemsClause  `json:"recommendations_to_items,omitempty"`
	Fields                 *FieldsClause                  `json:"fields,omitempty"`
}

type TextClause struct {
	Query          string  `json:"query"`
	Weight         float64 `json:"weight"`
	Preprocess     bool    `json:"preprocess,omitempty"`
	ScoreThreshold float64 `json:"score_threshold,omitempty"`
}

type PromptToVectorClause struct {
	Prompt     string  `json:"prompt"`
	Weight     float64 `json:"weight"`
	Preprocess bool    `json:"preprocess,omitempty"`
}

type ItemToVectorClause struct {
	ExternalIDs []string `json:"item"`
	Weight      float64  `json:"weight"`
}

func (c *ItemToVectorClause) UnmarshalJSON(data []byte) error {
	var a struct {
		Item   json.RawMessage `json:"item"`
		Weight float64         `json:"weight"`
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	ids, err := stringOrSlice(a.Item)
	if err != nil {
		return fmt.Errorf("item_to_vector: %w", err)
	}
	c.ExternalIDs = ids
	c.Weight = a.Weight
	return nil
}

type PersonToVectorClause struct {
	Person     string   `json:"person"`
	TimeWindow Duration `json:"time_window"`
	Limit      int      `json:"limit"`
	Weight     float64  `json:"weight"`
}

type FieldsToVectorClause struct {
	Fields map[string][]string `json:"fields"`
	Weight float64             `json:"weight"`
}

type EmbeddingsClause struct {
	Embeddings []float32 `json:"embeddings"`
	Weight     float64   `json:"weight"`
}

type ItemToItemsClause struct {
	ExternalIDs []string `json:"item"`
}

func (c *ItemToItemsClause) UnmarshalJSON(data []byte) error {
	var a struct {
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	ids, err := stringOrSlice(a.Item)
	if err != nil {
		return fmt.Errorf("item_to_items: %w", err)
	}
	c.ExternalIDs = ids
	return nil
}

// stringOrSlice decodes a JSON value that is either a single string or an
// array of strings, per the Query Parser's "id | [id]" shape.
func stringOrSlice(data json.RawMessage) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		return []string{single}, nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return nil, fmt.Errorf("expected a string or array of strings")
	}
	return many, nil
}

type PersonToItemsClause struct {
	Person     string   `json:"person"`
	TimeWindow Duration `json:"time_window"`
	Limit      int      `json:"limit"`
}

type RecommendationsToItemsClause struct {
	Person     string   `json:"person"`
	TimeWindow Duration `json:"time_window"`
	Limit      int      `json:"limit"`
}

type FieldsClause struct {
	Fields map[string]any `json:"fields"`
}

// Result is the parsed output of one clause list.
type Result struct {
	Vectors []WeightedVector
	Texts   []WeightedText
	Filter  *filterlang.Filter
	ItemIDs []string
}

// Deps are the collaborators clause evaluation needs.
type Deps struct {
	Store        *store.Store
	CollectionID int64
	Dimension    int
	Stemmers     []string
	Embedder     embedders.Provider
	LightLLM     llms.Provider
}

// Parse evaluates clauses in order against reqCtx (the request context
// used for $var substitution) and Deps' collaborators.
func Parse(ctx context.Context, clauses []Clause, reqCtx map[string]any, deps Deps) (*Result, error) {
	res := &Result{}
	var filters []*filterlang.Filter

	for _, c := range clauses {
		switch {
		case c.Text != nil:
			text, ok := resolveString(c.Text.Query, reqCtx)
			if !ok {
				continue
			}
			if c.Text.Preprocess && deps.LightLLM != nil {
				rewritten, err := deps.LightLLM.SingleQuery(ctx, "Rewrite this search query to be more effective: "+text, nil)
				if err == nil {
					text = rewritten
				}
			}
			stemmed := stemmer.Stem(deps.Stemmers, text)
			res.Texts = append(res.Texts, WeightedText{Text: stemmed, Weight: c.Text.Weight, ScoreThreshold: c.Text.ScoreThreshold})

		case c.PromptToVector != nil:
			prompt, ok := resolveString(c.PromptToVector.Prompt, reqCtx)
			if !ok {
				continue
			}
			if c.PromptToVector.Preprocess && deps.LightLLM != nil {
				rewritten, err := deps.LightLLM.SingleQuery(ctx, prompt, nil)
				if err == nil {
					prompt = rewritten
				}
			}
			vec, err := deps.Embedder.Embed(ctx, prompt)
			if err != nil {
				return nil, fmt.Errorf("prompt_to_vector: %w", err)
			}
			res.Vectors = append(res.Vectors, WeightedVector{Vector: vec, Weight: c.PromptToVector.Weight})

		case c.ItemToVector != nil:
			for _, id := range c.ItemToVector.ExternalIDs {
				item, err := deps.Store.GetItem(ctx, deps.CollectionID, id)
				if err != nil {
					continue
				}
				if len(item.Vector) > 0 {
					res.Vectors = append(res.Vectors, WeightedVector{Vector: item.Vector, Weight: c.ItemToVector.Weight})
				}
			}

		case c.PersonToVector != nil:
			ids, weights, err := recentItemIDs(ctx, deps, c.PersonToVector.Person, time.Duration(c.PersonToVector.TimeWindow), c.PersonToVector.Limit)
			if err != nil {
				return nil, fmt.Errorf("person_to_vector: %w", err)
			}
			for i, id := range ids {
				item, err := deps.Store.GetItem(ctx, deps.CollectionID, id)
				if err != nil || len(item.Vector) == 0 {
					continue
				}
				res.Vectors = append(res.Vectors, WeightedVector{
					Vector: item.Vector,
					Weight: weights[i] * c.PersonToVector.Weight,
				})
			}

		case c.FieldsToVector != nil:
			canon := embedders.FieldsToString(c.FieldsToVector.Fields)
			vec, err := deps.Embedder.Embed(ctx, canon)
			if err != nil {
				return nil, fmt.Errorf("fields_to_vector: %w", err)
			}
			res.Vectors = append(res.Vectors, WeightedVector{Vector: vec, Weight: c.FieldsToVector.Weight})

		case c.Embeddings != nil:
			res.Vectors = append(res.Vectors, WeightedVector{Vector: c.Embeddings.Embeddings, Weight: c.Embeddings.Weight})

		case c.ItemToItems != nil:
			res.ItemIDs = append(res.ItemIDs, c.ItemToItems.ExternalIDs...)

		case c.PersonToItems != nil:
			ids, _, err := recentItemIDs(ctx, deps, c.PersonToItems.Person, time.Duration(c.PersonToItems.TimeWindow), c.PersonToItems.Limit)
			if err != nil {
				return nil, fmt.Errorf("person_to_items: %w", err)
			}
			res.ItemIDs = append(res.ItemIDs, ids...)

		case c.RecommendationsToItems != nil:
			ids, err := recommendedItemIDs(ctx, deps, c.RecommendationsToItems.Person, time.Duration(c.RecommendationsToItems.TimeWindow), c.RecommendationsToItems.Limit)
			if err != nil {
				return nil, fmt.Errorf("recommendations_to_items: %w", err)
			}
			res.ItemIDs = append(res.ItemIDs, ids...)

		case c.Fields != nil:
			resolved, ok := resolveFields(c.Fields.Fields, reqCtx)
			if ok {
				filters = append(filters, filterlang.FromMap(resolved))
			}
		}
	}

	if len(filters) > 0 {
		res.Filter = filterlang.And(filters...)
	}
	return res, nil
}

// recentItemIDs fetches up to limit recent item external ids a person
// interacted with within timeWindow, weighted by event weight.
func recentItemIDs(ctx context.Context, deps Deps, person string, timeWindow time.Duration, limit int) ([]string, []float64, error) {
	events, err := deps.Store.ListEventsByPerson(ctx, deps.CollectionID, person)
	if err != nil {
		return nil, nil, err
	}
	cutoff := time.Now().Add(-timeWindow)
	var ids []string
	var weights []float64
	for _, e := range events {
		if timeWindow > 0 && e.CreatedAt.Before(cutoff) {
			continue
		}
		ids = append(ids, e.ItemExternalID)
		weights = append(weights, e.Weight)
		if limit > 0 && len(ids) >= limit {
			break
		}
	}
	return ids, weights, nil
}

// recommendedItemIDs returns item external ids served to person by prior
// searches within timeWindow, per the recommendations_to_items clause.
func recommendedItemIDs(ctx context.Context, deps Deps, person string, timeWindow time.Duration, limit int) ([]string, error) {
	events, err := deps.Store.ListEventsByPerson(ctx, deps.CollectionID, person)
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().Add(-timeWindow)
	seen := make(map[int64]bool)
	var ids []string
	for _, e := range events {
		if e.SearchHistoryID == nil {
			continue
		}
		if timeWindow > 0 && e.CreatedAt.Before(cutoff) {
			continue
		}
		if seen[*e.SearchHistoryID] {
			continue
		}
		seen[*e.SearchHistoryID] = true
		hist, err := deps.Store.GetSearchHistory(ctx, *e.SearchHistoryID)
		if err != nil {
			continue
		}
		ids = append(ids, hist.ItemExternalIDs...)
		if limit > 0 && len(ids) >= limit {
			return ids[:limit], nil
		}
	}
	return ids, nil
}

// resolveString resolves a single string value: if it starts with "$" it
// is looked up in reqCtx; an unresolved reference yields (|"", false).
func resolveString(value string, reqCtx map[string]any) (string, bool) {
	resolved, ok := resolveValue(value, reqCtx)
	if !ok {
		return "", false
	}
	s, ok := resolved.(string)
	return s, ok
}

// resolveValue implements the $var substitution rule: any string value
// beginning with "$" is replaced by the identifier's request-context
// lookup; non-"$" values pass through unchanged.
func resolveValue(value any, reqCtx map[string]any) (any, bool) {
	s, ok := value.(string)
	if !ok || !strings.HasPrefix(s, "$") {
		return value, true
	}
	v, found := reqCtx[strings.TrimPrefix(s, "$")]
	return v, found
}

// resolveFields resolves $var references in a fields map. A field whose
// reference is unresolved is dropped from the map rather than suppressing
// the whole clause, so a filter clause with some static and some
// context-dependent keys still contributes its static constraints.
func resolveFields(fields map[string]any, reqCtx map[string]any) (map[string]any, bool) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		resolved, ok := resolveValue(v, reqCtx)
		if ok {
			out[k] = resolved
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}
