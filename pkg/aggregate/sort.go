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

import "sort"

// sortStructuredQueries implements §4.10 step 4: a stable sort of the
// invoke step's structured results by cfg.Sort.Field, numerically
// coerced. Queries missing the sort field sort as if they held 0.
func sortStructuredQueries(cfg Config, queries []structuredQuery) []structuredQuery {
	if cfg.Sort == nil || cfg.Sort.Field == "" {
		return queries
	}
	out := make([]structuredQuery, len(queries))
	copy(out, queries)

	less := func(i, j int) bool {
		a := sortKey(out[i].Arguments[cfg.Sort.Field])
		b := sortKey(out[j].Arguments[cfg.Sort.Field])
		if cfg.Sort.Order == "desc" {
			return a > b
		}
		return a < b
	}
	sort.SliceStable(out, less)
	return out
}

func sortKey(v any) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case int:
		return float64(value)
	case int64:
		return float64(value)
	default:
		return 0
	}
}
