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

package suggest

import (
	"context"
	"testing"
)

func TestAccumulatorDedupesByFieldEquality(t *testing.T) {
	acc := &accumulator{seen: map[string]bool{}}
	acc.add(map[string]any{"title": "a", "price": 1.0})
	acc.add(map[string]any{"price": 1.0, "title": "a"}) // same fields, different key order
	acc.add(map[string]any{"title": "b"})

	if len(acc.items) != 2 {
		t.Fatalf("items = %v, want 2 deduped entries", acc.items)
	}
}

func TestSuggestWithNoSourcesReturnsEmpty(t *testing.T) {
	s := &Suggestor{}
	out, err := s.Suggest(context.Background(), Config{Limit: 5}, nil)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("out = %v, want empty", out)
	}
}

func TestAccumulatedItemsTruncateToLimit(t *testing.T) {
	acc := &accumulator{seen: map[string]bool{}}
	acc.add(map[string]any{"a": 1}, map[string]any{"a": 2}, map[string]any{"a": 3})
	out := acc.items
	limit := 2
	if len(out) > limit {
		out = out[:limit]
	}
	if len(out) != 2 {
		t.Fatalf("out = %v, want length 2", out)
	}
}
