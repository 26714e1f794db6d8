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

// fakeProvider is a minimal llms.Provider test double returning canned
// answers/tool calls without making any network call.
type fakeProvider struct {
	singleQueryAnswer string
	singleQueryErr    error
	toolCalls         []llms.ToolCall
	toolCallsByTool   map[string][]llms.ToolCall
	functionQueryErr  error
	calls             int
}

func (f *fakeProvider) SingleQuery(ctx context.Context, prompt string, files []llms.FileInput) (string, error) {
	f.calls++
	return f.singleQueryAnswer, f.singleQueryErr
}

func (f *fakeProvider) FunctionQuery(ctx context.Context, messages []llms.Message, tools []llms.ToolDefinition) ([]llms.ToolCall, error) {
	f.calls++
	if f.functionQueryErr != nil {
		return nil, f.functionQueryErr
	}
	if f.toolCallsByTool != nil && len(tools) == 1 {
		return f.toolCallsByTool[tools[0].Name], nil
	}
	return f.toolCalls, nil
}

func (f *fakeProvider) GetModelName() string { return "fake" }
func (f *fakeProvider) Close() error         { return nil }

func TestClassifySkipsLLMWithOneAggregation(t *testing.T) {
	cfg := Config{
		Aggregations: []AggregationQuery{{Name: "only"}},
		LightLLM:     &fakeProvider{singleQueryErr: context.DeadlineExceeded},
	}
	matched, err := classify(context.Background(), cfg)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(matched) != 1 || matched[0] != "only" {
		t.Fatalf("matched = %v, want [only]", matched)
	}
}

func TestClassifyMatchesNamesFromAnswer(t *testing.T) {
	provider := &fakeProvider{singleQueryAnswer: "products, reviews"}
	cfg := Config{
		Aggregations: []AggregationQuery{
			{Name: "products", Description: "product facts"},
			{Name: "reviews", Description: "review facts"},
			{Name: "unrelated", Description: "something else"},
		},
		LightLLM: provider,
		Prompt:   "what do people think of these shoes",
	}
	matched, err := classify(context.Background(), cfg)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(matched) != 2 || matched[0] != "products" || matched[1] != "reviews" {
		t.Fatalf("matched = %v, want [products reviews]", matched)
	}
}

func TestClassifyTruncatesToLimit(t *testing.T) {
	provider := &fakeProvider{singleQueryAnswer: "a b c"}
	cfg := Config{
		Aggregations: []AggregationQuery{{Name: "a"}, {Name: "b"}, {Name: "c"}},
		LightLLM:     provider,
		Limit:        2,
	}
	matched, err := classify(context.Background(), cfg)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("matched = %v, want length 2", matched)
	}
}
