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

// Package ingest implements the §4.12 Ingest Pipeline: bulk item upsert
// with shallow field merge and description recomputation, plus the
// periodic maintenance job that computes embeddings and reindexes items
// the upsert left dirty.
package ingest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kadirpekel/semhub/pkg/cache"
	"github.com/kadirpekel/semhub/pkg/hashutil"
	"github.com/kadirpekel/semhub/pkg/llms"
	"github.com/kadirpekel/semhub/pkg/store"
)

// SimpleItem is one caller-supplied item to upsert. Description is an
// explicit override; when empty, the description is computed from Fields.
type SimpleItem struct {
	ExternalID  string                      `json:"external_id"`
	Fields      map[string]store.FieldValue `json:"fields,omitempty"`
	Description string                      `json:"description,omitempty"`
	Scores      map[string]float64          `json:"scores,omitempty"`
}

// Pipeline is the per-collection ingest facade.
type Pipeline struct {
	Store        *store.Store
	CollectionID int64

	// DescriptionFromFields, when non-empty, projects just these field
	// names (in order) into the computed description instead of joining
	// every field.
	DescriptionFromFields []string

	// Preprocess, when true, rewrites the computed description through
	// one cached LightLLM call before hashing/storing it.
	Preprocess bool
	LightLLM   llms.Provider
	Cache      cache.Cache
	CacheTTL   time.Duration
}

// Upsert implements §4.12's upsert(collection, items): each item is
// processed independently (observed atomically per item, not per batch).
func (p *Pipeline) Upsert(ctx context.Context, items []SimpleItem) error {
	for _, item := range items {
		if err := p.upsertOne(ctx, item); err != nil {
			return fmt.Errorf("ingest: upsert %q: %w", item.ExternalID, err)
		}
	}
	return nil
}

func (p *Pipeline) upsertOne(ctx context.Context, item SimpleItem) error {
	merged := make(map[string]store.FieldValue, len(item.Fields))
	existing, err := p.Store.GetItem(ctx, p.CollectionID, item.ExternalID)
	if err == nil {
		for k, v := range existing.Fields {
			merged[k] = v
		}
	} else if err != store.ErrNotFound {
		return err
	}
	for k, v := range item.Fields {
		merged[k] = v
	}

	description := p.computeDescription(item, merged)
	if p.Preprocess && p.LightLLM != nil {
		description = p.preprocessDescription(ctx, description)
	}
	descriptionHash := hashutil.StableString(description)

	stored, err := p.Store.UpsertItem(ctx, p.CollectionID, item.ExternalID, merged, description, descriptionHash)
	if err != nil {
		return err
	}

	if len(item.Scores) > 0 {
		if err := p.Store.SetItemScores(ctx, stored.ID, item.Scores); err != nil {
			return fmt.Errorf("set item scores: %w", err)
		}
	}

	for name, value := range item.Fields {
		if err := p.Store.EnsureItemsField(ctx, p.CollectionID, name, name, inferFieldType(value), 0); err != nil {
			return fmt.Errorf("ensure items field %q: %w", name, err)
		}
	}
	return nil
}

// MarkRecalculate force-dirties each item's embedding regardless of
// whether its description changed, so the next maintenance pass recomputes
// it — the §6 items endpoint's recalculate_vectors flag. A missing item is
// not an error, matching Upsert's per-item-atomic posture.
func (p *Pipeline) MarkRecalculate(ctx context.Context, externalIDs []string) error {
	for _, id := range externalIDs {
		if err := p.Store.MarkEmbeddingsDirty(ctx, p.CollectionID, id); err != nil {
			return fmt.Errorf("ingest: mark recalculate %q: %w", id, err)
		}
	}
	return nil
}

// computeDescription implements §4.12's three-way precedence: an explicit
// description wins; otherwise a DescriptionFromFields projection; otherwise
// every field joined as "k is v1 v2 …".
func (p *Pipeline) computeDescription(item SimpleItem, fields map[string]store.FieldValue) string {
	if item.Description != "" {
		return item.Description
	}
	if len(p.DescriptionFromFields) > 0 {
		return joinFields(p.DescriptionFromFields, fields)
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return joinFields(names, fields)
}

func joinFields(names []string, fields map[string]store.FieldValue) string {
	parts := make([]string, 0, len(names))
	for _, name := range names {
		value, ok := fields[name]
		if !ok {
			continue
		}
		words := fieldWords(value)
		if len(words) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s is %s", name, strings.Join(words, " ")))
	}
	return strings.Join(parts, ", ")
}

func fieldWords(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		words := make([]string, 0, len(v))
		for _, e := range v {
			words = append(words, fmt.Sprint(e))
		}
		return words
	default:
		return []string{fmt.Sprint(v)}
	}
}

// preprocessDescription rewrites description through one cached LightLLM
// call. A cache hit skips the call; an LLM error or an empty answer falls
// back to the unmodified description: preprocessing is a quality
// improvement, never a hard dependency of ingest.
func (p *Pipeline) preprocessDescription(ctx context.Context, description string) string {
	key := "ingest:preprocess:" + hashutil.StableString(description)
	if p.Cache != nil {
		if cached, ok := p.Cache.Get(ctx, key); ok {
			return string(cached)
		}
	}

	rewritten, err := p.LightLLM.SingleQuery(ctx, "Rewrite this item description to be clearer and more searchable:\n"+description, nil)
	if err != nil || rewritten == "" {
		return description
	}
	if p.Cache != nil {
		p.Cache.Set(ctx, key, []byte(rewritten), p.CacheTTL)
	}
	return rewritten
}

func inferFieldType(value any) string {
	switch value.(type) {
	case bool:
		return "boolean"
	case float64, float32, int, int64:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return "string"
	}
}
