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

import "testing"

func TestSortStructuredQueriesNoSortReturnsUnchanged(t *testing.T) {
	queries := []structuredQuery{{AggregationName: "a"}, {AggregationName: "b"}}
	out := sortStructuredQueries(Config{}, queries)
	if out[0].AggregationName != "a" || out[1].AggregationName != "b" {
		t.Fatalf("out = %v, want unchanged order", out)
	}
}

func TestSortStructuredQueriesAscending(t *testing.T) {
	queries := []structuredQuery{
		{AggregationName: "high", Arguments: map[string]any{"price": 99.0}},
		{AggregationName: "low", Arguments: map[string]any{"price": 10.0}},
	}
	cfg := Config{Sort: &Sort{Field: "price", Order: "asc"}}
	out := sortStructuredQueries(cfg, queries)
	if out[0].AggregationName != "low" || out[1].AggregationName != "high" {
		t.Fatalf("out = %v, want [low high]", out)
	}
}

func TestSortStructuredQueriesDescending(t *testing.T) {
	queries := []structuredQuery{
		{AggregationName: "low", Arguments: map[string]any{"price": 10.0}},
		{AggregationName: "high", Arguments: map[string]any{"price": 99.0}},
	}
	cfg := Config{Sort: &Sort{Field: "price", Order: "desc"}}
	out := sortStructuredQueries(cfg, queries)
	if out[0].AggregationName != "high" || out[1].AggregationName != "low" {
		t.Fatalf("out = %v, want [high low]", out)
	}
}

func TestSortStructuredQueriesMissingFieldSortsAsZero(t *testing.T) {
	queries := []structuredQuery{
		{AggregationName: "has", Arguments: map[string]any{"price": -5.0}},
		{AggregationName: "missing", Arguments: map[string]any{}},
	}
	cfg := Config{Sort: &Sort{Field: "price", Order: "asc"}}
	out := sortStructuredQueries(cfg, queries)
	if out[0].AggregationName != "has" || out[1].AggregationName != "missing" {
		t.Fatalf("out = %v, want [has missing]", out)
	}
}
