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

package filterlang

import "testing"

func TestNormalizeField(t *testing.T) {
	cases := map[string]string{
		"Display Name": "display_name",
		"foo-bar":      "foo_bar",
		"a.b.c":        "a_b_c",
		"already_ok":   "already_ok",
	}
	for in, want := range cases {
		if got := NormalizeField(in); got != want {
			t.Errorf("NormalizeField(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMatchesEq(t *testing.T) {
	f := Eq("category", "shoes")
	if !Matches(f, map[string]any{"category": "shoes"}) {
		t.Error("expected match")
	}
	if Matches(f, map[string]any{"category": "hats"}) {
		t.Error("expected no match")
	}
}

func TestMatchesAndOr(t *testing.T) {
	f := And(Eq("category", "shoes"), Or(Eq("color", "red"), Eq("color", "blue")))
	if !Matches(f, map[string]any{"category": "shoes", "color": "blue"}) {
		t.Error("expected match")
	}
	if Matches(f, map[string]any{"category": "shoes", "color": "green"}) {
		t.Error("expected no match")
	}
	if Matches(f, map[string]any{"category": "hats", "color": "blue"}) {
		t.Error("expected no match")
	}
}

func TestMatchesNot(t *testing.T) {
	f := &Filter{Not: Eq("category", "shoes")}
	if Matches(f, map[string]any{"category": "shoes"}) {
		t.Error("expected no match")
	}
	if !Matches(f, map[string]any{"category": "hats"}) {
		t.Error("expected match")
	}
}

func TestMatchesGteLte(t *testing.T) {
	f := And(Leaf("price", OpGTE, 10.0), Leaf("price", OpLTE, 20.0))
	if !Matches(f, map[string]any{"price": 15.0}) {
		t.Error("expected match within range")
	}
	if Matches(f, map[string]any{"price": 25.0}) {
		t.Error("expected no match above range")
	}
}

func TestMatchesContainsRequiresAll(t *testing.T) {
	f := Leaf("tags", OpContains, []any{"red", "large"})
	if !Matches(f, map[string]any{"tags": []any{"red", "large", "extra"}}) {
		t.Error("expected match when all elements present")
	}
	if Matches(f, map[string]any{"tags": []any{"red"}}) {
		t.Error("expected no match when one element missing")
	}
}

func TestMatchesOverlapsRequiresAny(t *testing.T) {
	f := Leaf("tags", OpOverlaps, []any{"red", "large"})
	if !Matches(f, map[string]any{"tags": []any{"large"}}) {
		t.Error("expected match on any shared element")
	}
	if Matches(f, map[string]any{"tags": []any{"blue"}}) {
		t.Error("expected no match when no elements shared")
	}
}

func TestMatchesContainsAgainstScalarFieldNeverMatches(t *testing.T) {
	f := Leaf("tags", OpContains, []any{"red"})
	if Matches(f, map[string]any{"tags": "red"}) {
		t.Error("expected no match: contains against a scalar stored value must not auto-wrap")
	}
	if Matches(f, map[string]any{"tags": nil}) {
		t.Error("expected no match against a missing field")
	}
}

func TestMatchesOverlapsAgainstScalarFieldNeverMatches(t *testing.T) {
	f := Leaf("tags", OpOverlaps, []any{"red", "blue"})
	if Matches(f, map[string]any{"tags": "red"}) {
		t.Error("expected no match: overlaps against a scalar stored value must not auto-wrap")
	}
}

func TestMatchesIn(t *testing.T) {
	f := Leaf("category", OpIn, []any{"shoes", "hats"})
	if !Matches(f, map[string]any{"category": "hats"}) {
		t.Error("expected match")
	}
	if Matches(f, map[string]any{"category": "coats"}) {
		t.Error("expected no match")
	}
}

func TestMergeFieldMapsLastWriterWins(t *testing.T) {
	got := MergeFieldMaps(map[string]any{"a": 1, "b": 2}, map[string]any{"b": 3})
	if got["a"] != 1 || got["b"] != 3 {
		t.Errorf("got %v, want a=1 b=3", got)
	}
}

func TestParseJSONSpecExample(t *testing.T) {
	// S5: {"and":[{"price":{"gte":100,"lte":200}},{"tags":{"contains":["sea_view","new"]}}]}
	tree := map[string]any{
		"and": []any{
			map[string]any{"price": map[string]any{"gte": 100.0, "lte": 200.0}},
			map[string]any{"tags": map[string]any{"contains": []any{"sea_view", "new"}}},
		},
	}
	f, err := ParseJSON(tree)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if !Matches(f, map[string]any{"price": 150.0, "tags": []any{"sea_view", "new", "villa"}}) {
		t.Error("expected match within range and with both tags present")
	}
	if Matches(f, map[string]any{"price": 250.0, "tags": []any{"sea_view", "new"}}) {
		t.Error("expected no match: price out of range")
	}
	if Matches(f, map[string]any{"price": 150.0, "tags": []any{"sea_view"}}) {
		t.Error("expected no match: missing required tag")
	}
}

func TestParseJSONOrAndNot(t *testing.T) {
	tree := map[string]any{
		"or": []any{
			map[string]any{"category": "shoes"},
			map[string]any{"not": map[string]any{"color": "red"}},
		},
	}
	f, err := ParseJSON(tree)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if !Matches(f, map[string]any{"category": "shoes", "color": "red"}) {
		t.Error("expected match: left branch of or")
	}
	if !Matches(f, map[string]any{"category": "hats", "color": "blue"}) {
		t.Error("expected match: right branch of or (not red)")
	}
	if Matches(f, map[string]any{"category": "hats", "color": "red"}) {
		t.Error("expected no match: neither branch holds")
	}
}

func TestParseJSONLeafNot(t *testing.T) {
	f, err := ParseJSON(map[string]any{"category": map[string]any{"not": "shoes"}})
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if Matches(f, map[string]any{"category": "shoes"}) {
		t.Error("expected no match")
	}
	if !Matches(f, map[string]any{"category": "hats"}) {
		t.Error("expected match")
	}
}

func TestParseJSONIn(t *testing.T) {
	f, err := ParseJSON(map[string]any{"category": map[string]any{"in": []any{"shoes", "hats"}}})
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if !Matches(f, map[string]any{"category": "hats"}) {
		t.Error("expected match")
	}
}

func TestParseJSONNilAndEmpty(t *testing.T) {
	if f, err := ParseJSON(nil); err != nil || f != nil {
		t.Errorf("ParseJSON(nil) = %v, %v, want nil, nil", f, err)
	}
	if f, err := ParseJSON(map[string]any{}); err != nil || f != nil {
		t.Errorf("ParseJSON({}) = %v, %v, want nil, nil", f, err)
	}
}

func TestParseJSONUnknownOperatorErrors(t *testing.T) {
	_, err := ParseJSON(map[string]any{"price": map[string]any{"bogus": 1}})
	if err == nil {
		t.Fatal("expected an error for an unrecognized leaf operator")
	}
}

func TestParseJSONRejectsNonObjectRoot(t *testing.T) {
	_, err := ParseJSON("not-an-object")
	if err == nil {
		t.Fatal("expected an error for a non-object filter value")
	}
}

func TestParseJSONOfFilterTreeMeetsItsNegationIsUnsatisfiable(t *testing.T) {
	// §8 property 5: search(T and not T, ...) returns nothing. Verified at
	// the Matches level since filterlang has no index of its own.
	tree := map[string]any{"category": "shoes"}
	f, err := ParseJSON(tree)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	combined := And(f, Not(f))
	item := map[string]any{"category": "shoes"}
	if Matches(combined, item) {
		t.Error("expected T and not T to never match")
	}
}
