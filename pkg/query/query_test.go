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

package query

import (
	"context"
	"testing"
)

func TestResolveStringLiteralPassesThrough(t *testing.T) {
	got, ok := resolveString("running shoes", map[string]any{})
	if !ok || got != "running shoes" {
		t.Errorf("resolveString() = (%q, %v), want (%q, true)", got, ok, "running shoes")
	}
}

func TestResolveStringSubstitutesFromContext(t *testing.T) {
	got, ok := resolveString("$query", map[string]any{"query": "red shoes"})
	if !ok || got != "red shoes" {
		t.Errorf("resolveString() = (%q, %v), want (%q, true)", got, ok, "red shoes")
	}
}

func TestResolveStringUnresolvedIsAbsent(t *testing.T) {
	_, ok := resolveString("$missing", map[string]any{})
	if ok {
		t.Errorf("resolveString() ok = true, want false for unresolved $var")
	}
}

func TestResolveFieldsDropsUnresolvedKeysKeepsStatic(t *testing.T) {
	fields := map[string]any{"category": "shoes", "person_id": "$person"}
	got, ok := resolveFields(fields, map[string]any{})
	if !ok {
		t.Fatalf("resolveFields() ok = false, want true (category is static)")
	}
	if _, present := got["person_id"]; present {
		t.Errorf("expected unresolved person_id dropped, got %v", got)
	}
	if got["category"] != "shoes" {
		t.Errorf("expected static category preserved, got %v", got)
	}
}

func TestResolveFieldsAllUnresolvedYieldsAbsent(t *testing.T) {
	fields := map[string]any{"person_id": "$person"}
	_, ok := resolveFields(fields, map[string]any{})
	if ok {
		t.Errorf("expected clause suppressed when every reference is unresolved")
	}
}

func TestParseTextClauseUnresolvedIsSkipped(t *testing.T) {
	clauses := []Clause{{Text: &TextClause{Query: "$missing", Weight: 1}}}
	res, err := Parse(context.Background(), clauses, map[string]any{}, Deps{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(res.Texts) != 0 {
		t.Errorf("expected no text contribution for unresolved $var, got %v", res.Texts)
	}
}

func TestParseEmbeddingsClausePassesThrough(t *testing.T) {
	vec := []float32{0.1, 0.2, 0.3}
	clauses := []Clause{{Embeddings: &EmbeddingsClause{Embeddings: vec, Weight: 2}}}
	res, err := Parse(context.Background(), clauses, nil, Deps{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(res.Vectors) != 1 || res.Vectors[0].Weight != 2 {
		t.Fatalf("expected one weighted vector with weight 2, got %v", res.Vectors)
	}
}

func TestParseItemToItemsCollectsIDs(t *testing.T) {
	clauses := []Clause{{ItemToItems: &ItemToItemsClause{ExternalIDs: []string{"a", "b"}}}}
	res, err := Parse(context.Background(), clauses, nil, Deps{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(res.ItemIDs) != 2 {
		t.Errorf("expected 2 item ids, got %v", res.ItemIDs)
	}
}

func TestParseFieldsClauseBuildsFilter(t *testing.T) {
	clauses := []Clause{{Fields: &FieldsClause{Fields: map[string]any{"category": "shoes"}}}}
	res, err := Parse(context.Background(), clauses, nil, Deps{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if res.Filter == nil {
		t.Fatalf("expected a non-nil filter")
	}
}
