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
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kadirpekel/semhub/pkg/llms"
)

// structuredQuery pairs a matched aggregation with one LLM-produced
// function-call's arguments.
type structuredQuery struct {
	AggregationName string
	Arguments       map[string]any
}

// buildToolDefinitions implements §4.10 step 2 (schematize) for the
// matched aggregation names, preserving config order.
func buildToolDefinitions(cfg Config, matchedNames []string) []llms.ToolDefinition {
	matched := make(map[string]bool, len(matchedNames))
	for _, n := range matchedNames {
		matched[n] = true
	}

	var tools []llms.ToolDefinition
	for _, a := range cfg.Aggregations {
		if !matched[a.Name] {
			continue
		}
		description := a.Description
		if len(a.Facts) > 0 {
			description = fmt.Sprintf("%s\nFacts:\n%s", description, strings.Join(a.Facts, "\n"))
		}
		tools = append(tools, llms.ToolDefinition{
			Name:        a.Name,
			Description: description,
			Parameters:  fieldsToOpenAPISchema(a.Fields),
		})
	}
	return tools
}

// invoke implements §4.10 step 3: a single function call offering every
// matched schema when limit<=1, otherwise one call per schema dispatched
// concurrently.
func invoke(ctx context.Context, cfg Config, matchedNames []string) ([]structuredQuery, error) {
	tools := buildToolDefinitions(cfg, matchedNames)
	if cfg.Limit > 0 && len(tools) > cfg.Limit {
		tools = tools[:cfg.Limit]
	}
	if len(tools) == 0 {
		return nil, nil
	}

	aggregationPrompt := cfg.AggregationPrompt
	if aggregationPrompt == "" {
		aggregationPrompt = defaultAggregationPrompt
	}
	question := strings.Replace(aggregationPrompt, "{prompt}", cfg.Prompt, 1)

	if cfg.Limit <= 1 {
		content := llms.WithFileText(question, cfg.Files)
		calls, err := cfg.HeavyLLM.FunctionQuery(ctx, []llms.Message{{Role: "user", Content: content}}, tools)
		if err != nil {
			return nil, fmt.Errorf("invoke: function query: %w", err)
		}
		return toStructuredQueries(calls), nil
	}

	results := make([][]structuredQuery, len(tools))
	group, groupCtx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	for i, tool := range tools {
		i, tool := i, tool
		group.Go(func() error {
			calls, err := cfg.HeavyLLM.FunctionQuery(groupCtx, []llms.Message{{Role: "user", Content: question}}, []llms.ToolDefinition{tool})
			if err != nil {
				return fmt.Errorf("invoke: function query for %q: %w", tool.Name, err)
			}
			mu.Lock()
			results[i] = toStructuredQueries(calls)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var out []structuredQuery
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

func toStructuredQueries(calls []llms.ToolCall) []structuredQuery {
	out := make([]structuredQuery, len(calls))
	for i, c := range calls {
		out[i] = structuredQuery{AggregationName: c.Name, Arguments: c.Arguments}
	}
	return out
}
