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
)

// classify implements §4.10 step 1. With only one aggregation defined, it
// is skipped and that aggregation's name is returned directly.
func classify(ctx context.Context, cfg Config) ([]string, error) {
	if len(cfg.Aggregations) == 1 {
		return []string{cfg.Aggregations[0].Name}, nil
	}

	classificationPrompt := cfg.ClassificationPrompt
	if classificationPrompt == "" {
		classificationPrompt = defaultClassificationPrompt
	}

	categories := make([]string, len(cfg.Aggregations))
	for i, a := range cfg.Aggregations {
		categories[i] = fmt.Sprintf("name: %s description: %s", a.Name, a.Description)
	}

	prompt := strings.NewReplacer(
		"{categories}", strings.Join(categories, "\n"),
		"{prompt}", cfg.Prompt,
	).Replace(classificationPrompt)

	answer, err := cfg.LightLLM.SingleQuery(ctx, prompt, nil)
	if err != nil {
		return nil, fmt.Errorf("classify: light llm call: %w", err)
	}

	answer = strings.NewReplacer("\\", "", ",", " ", "\n", " ").Replace(answer)

	var matched []string
	for _, word := range strings.Fields(answer) {
		for _, a := range cfg.Aggregations {
			if a.Name == strings.TrimSpace(word) {
				matched = append(matched, a.Name)
			}
		}
	}

	if len(matched) > cfg.Limit && cfg.Limit > 0 {
		matched = matched[:cfg.Limit]
	}
	return matched, nil
}
