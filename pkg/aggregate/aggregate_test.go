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

// toolCountingProvider records how many tools the single function call in
// invoke's cfg.Limit<=1 branch was offered, which plain call-counting
// can't distinguish (that branch always makes exactly one call; what
// changes with the Limit default is how many schemas ride along in it).
type toolCountingProvider struct {
	fakeProvider
	lastToolCount int
}

func (p *toolCountingProvider) FunctionQuery(ctx context.Context, messages []llms.Message, tools []llms.ToolDefinition) ([]llms.ToolCall, error) {
	p.lastToolCount = len(tools)
	return p.fakeProvider.FunctionQuery(ctx, messages, tools)
}

// TestAggregateDefaultsOmittedLimitToOne exercises the §4.10 step 3 branch
// an omitted "limit" JSON field takes: a request that matches two
// aggregations but never sets Limit must offer only the one default tool
// in that single function call, not every matched schema.
func TestAggregateDefaultsOmittedLimitToOne(t *testing.T) {
	classifyProvider := &fakeProvider{singleQueryAnswer: "colors sizes"}
	invokeProvider := &toolCountingProvider{fakeProvider: fakeProvider{toolCalls: []llms.ToolCall{
		{Name: "colors", Arguments: map[string]any{"color": "red"}},
	}}}

	a := &Aggregator{}
	cfg := Config{
		Prompt: "what colors and sizes are popular",
		Aggregations: []AggregationQuery{
			{Name: "colors", Description: "color facts", Fields: map[string]Field{
				"color": {Type: FieldText},
			}},
			{Name: "sizes", Description: "size facts", Fields: map[string]Field{
				"size": {Type: FieldText},
			}},
		},
		LightLLM: classifyProvider,
		HeavyLLM: invokeProvider,
		// Limit deliberately omitted, mirroring a request body with no
		// "limit" field.
	}

	if _, err := a.Aggregate(context.Background(), cfg); err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if invokeProvider.calls != 1 {
		t.Fatalf("HeavyLLM.FunctionQuery calls = %d, want 1", invokeProvider.calls)
	}
	if invokeProvider.lastToolCount != 1 {
		t.Fatalf("tools offered in the single call = %d, want 1 (Limit should default to 1, not leave every matched aggregation on offer)", invokeProvider.lastToolCount)
	}
}
