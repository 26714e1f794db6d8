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
	"fmt"
	"strings"

	"github.com/kadirpekel/semhub/pkg/llms"
	"github.com/kadirpekel/semhub/pkg/query"
	"github.com/kadirpekel/semhub/pkg/search"
)

// AutocompleteConfig configures one autocomplete pass: an LLM proposes N
// continuations of a prompt, each grounded in a real item via a narrow
// Searcher call.
type AutocompleteConfig struct {
	Prompt          string        `json:"prompt"`
	ContextSnippets []string      `json:"context_snippets,omitempty"`
	Continuations   int           `json:"continuations,omitempty"`
	Query           search.Config `json:"query"` // narrowed per-candidate: Limit forced to 1
	Model           string        `json:"model,omitempty"`
	Provider        llms.Provider `json:"-"`
}

const defaultAutocompletePrompt = `Continue the user's search query with %d short, distinct completions, one per line. Don't number them or say anything else.

Context:
%s

Query:
%s`

// Autocompletor proposes LLM continuations of a prompt and grounds each one
// in a real item via a tight, limit-1 Searcher call, dropping duplicate
// item ids.
type Autocompletor struct {
	Searcher *search.Searcher
}

// Suggest implements §4.11's autocomplete source: build a prompt from
// ContextSnippets, ask the LLM for Continuations candidates, then run one
// narrow Search per candidate (limit 1) to ground it in a real item.
// Candidates that resolve to an item id already seen are dropped.
func (a *Autocompletor) Suggest(ctx context.Context, cfg AutocompleteConfig, reqCtx map[string]any) ([]map[string]any, error) {
	if cfg.Provider == nil || cfg.Continuations <= 0 {
		return nil, nil
	}

	prompt := fmt.Sprintf(defaultAutocompletePrompt, cfg.Continuations, strings.Join(cfg.ContextSnippets, "\n"), cfg.Prompt)
	answer, err := cfg.Provider.SingleQuery(ctx, prompt, nil)
	if err != nil {
		return nil, fmt.Errorf("autocomplete: single query: %w", err)
	}

	candidates := splitLines(answer)
	if len(candidates) > cfg.Continuations {
		candidates = candidates[:cfg.Continuations]
	}

	seenItemIDs := make(map[int64]bool, len(candidates))
	var suggestions []map[string]any
	for _, candidate := range candidates {
		candidateCfg := cfg.Query
		candidateCfg.Limit = 1
		candidateCfg.Queries = []query.Clause{{Text: &query.TextClause{Query: candidate, Weight: 1}}}
		items, _, err := a.Searcher.Search(ctx, candidateCfg, "", reqCtx)
		if err != nil {
			continue
		}
		if len(items) == 0 {
			continue
		}
		item := items[0]
		if seenItemIDs[item.ID] {
			continue
		}
		seenItemIDs[item.ID] = true
		suggestions = append(suggestions, item.Fields)
	}
	return suggestions, nil
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
