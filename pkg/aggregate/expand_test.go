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

package aggregate

import (
	"context"
	"testing"
)

func TestExtractDependenciesFindsNestedDollarRefs(t *testing.T) {
	deps := map[string]bool{}
	extractDependencies(map[string]any{
		"category": "$genre",
		"nested":   map[string]any{"tags": []any{"$mood", "static"}},
	}, deps)
	if !deps["genre"] || !deps["mood"] {
		t.Fatalf("deps = %v, want genre and mood", deps)
	}
	if len(deps) != 2 {
		t.Fatalf("deps = %v, want exactly 2 entries", deps)
	}
}

func TestFindExecutionLevelsOrdersByDependency(t *testing.T) {
	fields := map[string]Field{
		"genre": {Type: FieldText},
		"book": {
			Type: FieldItem,
			Item: &ItemField{Filter: map[string]any{"genre": "$genre"}},
		},
	}
	levels, err := findExecutionLevels(fields)
	if err != nil {
		t.Fatalf("findExecutionLevels: %v", err)
	}
	if len(levels) != 2 {
		t.Fatalf("levels = %v, want 2 levels", levels)
	}
	if levels[0][0] != "genre" {
		t.Fatalf("levels[0] = %v, want [genre] first", levels[0])
	}
	if levels[1][0] != "book" {
		t.Fatalf("levels[1] = %v, want [book] second", levels[1])
	}
}

func TestFindExecutionLevelsDetectsCycle(t *testing.T) {
	fields := map[string]Field{
		"a": {Type: FieldItem, Item: &ItemField{Filter: map[string]any{"ref": "$b"}}},
		"b": {Type: FieldItem, Item: &ItemField{Filter: map[string]any{"ref": "$a"}}},
	}
	_, err := findExecutionLevels(fields)
	if err == nil {
		t.Fatal("findExecutionLevels: want cycle error, got nil")
	}
}

func TestSubstituteFilterVarsResolvesAndDefaultsNilWhenMissing(t *testing.T) {
	out := substituteFilterVars(map[string]any{
		"genre":  "$genre",
		"status": "published",
		"missing": map[string]any{
			"inner": "$absent",
		},
	}, map[string]any{"genre": "scifi"})

	if out["genre"] != "scifi" {
		t.Fatalf("genre = %v, want scifi", out["genre"])
	}
	if out["status"] != "published" {
		t.Fatalf("status = %v, want published", out["status"])
	}
	inner, ok := out["missing"].(map[string]any)
	if !ok || inner["inner"] != nil {
		t.Fatalf("missing.inner = %v, want nil", out["missing"])
	}
}

func TestSubstituteFilterVarsRecursesIntoAndOrArrays(t *testing.T) {
	out := substituteFilterVars(map[string]any{
		"or": []any{
			map[string]any{"genre": "$genre"},
			map[string]any{"status": "$status"},
		},
	}, map[string]any{"genre": "scifi"})

	branches, ok := out["or"].([]any)
	if !ok || len(branches) != 2 {
		t.Fatalf("or = %v, want a 2-element slice", out["or"])
	}
	first, ok := branches[0].(map[string]any)
	if !ok || first["genre"] != "scifi" {
		t.Fatalf("branches[0] = %v, want genre=scifi", branches[0])
	}
	second, ok := branches[1].(map[string]any)
	if !ok || second["status"] != nil {
		t.Fatalf("branches[1] = %v, want status=nil", branches[1])
	}
}

func TestListifyWrapsScalarAndPassesThroughList(t *testing.T) {
	if got := listify(nil); got != nil {
		t.Fatalf("listify(nil) = %v, want nil", got)
	}
	if got := listify("x"); len(got) != 1 || got[0] != "x" {
		t.Fatalf("listify(x) = %v, want [x]", got)
	}
	list := []any{"a", "b"}
	if got := listify(list); len(got) != 2 {
		t.Fatalf("listify(list) = %v, want passthrough", got)
	}
}

func TestCartesianProductMultipliesAcrossFields(t *testing.T) {
	combos := cartesianProduct([]string{"color", "size"}, map[string][]any{
		"color": {"red", "blue"},
		"size":  {"s", "m"},
	})
	if len(combos) != 4 {
		t.Fatalf("combos = %v, want 4 entries", combos)
	}
}

func TestCartesianProductEmptyFieldZeroesResult(t *testing.T) {
	combos := cartesianProduct([]string{"color", "size"}, map[string][]any{
		"color": {},
		"size":  {"s", "m"},
	})
	if len(combos) != 0 {
		t.Fatalf("combos = %v, want 0 entries", combos)
	}
}

func TestAddNonDynamicFieldsInjectsLiteralValue(t *testing.T) {
	items := []map[string]any{{"a": 1}, {"a": 2}}
	addNonDynamicFields(map[string]Field{
		"source": {Value: "catalog"},
	}, items)
	for _, item := range items {
		if item["source"] != "catalog" {
			t.Fatalf("item = %v, want source=catalog", item)
		}
	}
}

func TestExpanderGenerateScalarFieldsOnly(t *testing.T) {
	levels, err := findExecutionLevels(map[string]Field{
		"limit": {Type: FieldInteger},
	})
	if err != nil {
		t.Fatalf("findExecutionLevels: %v", err)
	}
	e := &expander{
		ctx:        context.Background(),
		structured: map[string]any{"limit": 5},
		fields:     map[string]Field{"limit": {Type: FieldInteger}},
		levels:     levels,
	}
	out, err := e.generate(map[string]any{}, 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(out) != 1 || out[0]["limit"] != 5 {
		t.Fatalf("out = %v, want [{limit:5}]", out)
	}
}
