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

	"github.com/kadirpekel/semhub/pkg/llms"
)

func TestBuildToolDefinitionsFiltersToMatchedAndAppendsFacts(t *testing.T) {
	cfg := Config{
		Aggregations: []AggregationQuery{
			{Name: "a", Description: "desc a", Facts: []string{"fact one"}},
			{Name: "b", Description: "desc b"},
		},
	}
	tools := buildToolDefinitions(cfg, []string{"a"})
	if len(tools) != 1 {
		t.Fatalf("tools = %v, want length 1", tools)
	}
	if tools[0].Name != "a" {
		t.Fatalf("tools[0].Name = %q, want a", tools[0].Name)
	}
	if !contains(tools[0].Description, "fact one") {
		t.Fatalf("description %q missing facts", tools[0].Description)
	}
}

func TestInvokeSingleCallWhenLimitAtMostOne(t *testing.T) {
	provider := &fakeProvider{toolCalls: []llms.ToolCall{
		{Name: "a", Arguments: map[string]any{"x": 1}},
	}}
	cfg := Config{
		Aggregations: []AggregationQuery{{Name: "a", Description: "desc"}},
		HeavyLLM:     provider,
		Limit:        1,
		Prompt:       "find x",
	}
	out, err := invoke(context.Background(), cfg, []string{"a"})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if len(out) != 1 || out[0].AggregationName != "a" {
		t.Fatalf("out = %v", out)
	}
	if provider.calls != 1 {
		t.Fatalf("calls = %d, want 1", provider.calls)
	}
}

func TestInvokeDispatchesOneCallPerSchemaWhenLimitAboveOne(t *testing.T) {
	provider := &fakeProvider{toolCallsByTool: map[string][]llms.ToolCall{
		"a": {{Name: "a", Arguments: map[string]any{"x": 1}}},
		"b": {{Name: "b", Arguments: map[string]any{"y": 2}}},
	}}
	cfg := Config{
		Aggregations: []AggregationQuery{
			{Name: "a", Description: "desc a"},
			{Name: "b", Description: "desc b"},
		},
		HeavyLLM: provider,
		Limit:    5,
		Prompt:   "find x and y",
	}
	out, err := invoke(context.Background(), cfg, []string{"a", "b"})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("out = %v, want length 2", out)
	}
	if provider.calls != 2 {
		t.Fatalf("calls = %d, want 2", provider.calls)
	}
}

func TestInvokeReturnsNilWhenNoMatches(t *testing.T) {
	cfg := Config{Aggregations: []AggregationQuery{{Name: "a"}}, Limit: 1}
	out, err := invoke(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if out != nil {
		t.Fatalf("out = %v, want nil", out)
	}
}

func contains(s, substr string) bool {
	return indexOf(s, substr) >= 0
}
