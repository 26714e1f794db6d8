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

	"github.com/kadirpekel/semhub/pkg/apperror"
	"github.com/kadirpekel/semhub/pkg/query"
	"github.com/kadirpekel/semhub/pkg/search"
)

// findExecutionLevels builds a dependency graph over fields (a field
// depends on another if an "item" field's filter references it via
// "$name") and returns Kahn's-algorithm topological levels: every field in
// one level is independent of every other field in that level.
func findExecutionLevels(fields map[string]Field) ([][]string, error) {
	dependencies := make(map[string]map[string]bool, len(fields))
	dependents := make(map[string]map[string]bool, len(fields))
	inDegree := make(map[string]int, len(fields))

	for name := range fields {
		dependencies[name] = map[string]bool{}
		dependents[name] = map[string]bool{}
		inDegree[name] = 0
	}

	for name, field := range fields {
		if field.Type != FieldItem || field.Item == nil {
			continue
		}
		deps := map[string]bool{}
		extractDependencies(field.Item.Filter, deps)
		for dep := range deps {
			if _, known := fields[dep]; !known {
				continue
			}
			dependencies[name][dep] = true
		}
		inDegree[name] = len(dependencies[name])
		for dep := range dependencies[name] {
			dependents[dep][name] = true
		}
	}

	var levels [][]string
	processed := map[string]bool{}
	for len(processed) < len(fields) {
		var current []string
		for name := range fields {
			if inDegree[name] == 0 && !processed[name] {
				current = append(current, name)
			}
		}
		if len(current) == 0 {
			return nil, &apperror.ConfigError{Message: "cyclic dependency among aggregation fields"}
		}
		levels = append(levels, current)
		for _, name := range current {
			processed[name] = true
			for dependent := range dependents[name] {
				inDegree[dependent]--
			}
		}
	}
	return levels, nil
}

// extractDependencies recursively collects "$name" references anywhere in
// a filter value tree.
func extractDependencies(v any, deps map[string]bool) {
	switch value := v.(type) {
	case map[string]any:
		for _, child := range value {
			extractDependencies(child, deps)
		}
	case []any:
		for _, child := range value {
			extractDependencies(child, deps)
		}
	case string:
		if strings.HasPrefix(value, "$") {
			deps[strings.TrimPrefix(value, "$")] = true
		}
	}
}

// substituteFilterVars deep-copies filters, replacing any "$name" string
// value with reqCtx[name] (absent -> nil, mirroring
// replace_filtering_variables's context.get default).
func substituteFilterVars(filters map[string]any, reqCtx map[string]any) map[string]any {
	out := make(map[string]any, len(filters))
	for k, v := range filters {
		out[k] = substituteFilterValue(v, reqCtx)
	}
	return out
}

func substituteFilterValue(v any, reqCtx map[string]any) any {
	switch value := v.(type) {
	case map[string]any:
		return substituteFilterVars(value, reqCtx)
	case []any:
		out := make([]any, len(value))
		for i, child := range value {
			out[i] = substituteFilterValue(child, reqCtx)
		}
		return out
	case string:
		if strings.HasPrefix(value, "$") {
			return reqCtx[strings.TrimPrefix(value, "$")]
		}
		return value
	default:
		return value
	}
}

// listify normalizes a scalar-or-list value into a list, as §4.10's
// item-field expansion does for both multi-valued LLM outputs and
// singleton scalars.
func listify(v any) []any {
	if v == nil {
		return nil
	}
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}

// expander runs the Searcher for "item"-typed fields during combination
// generation (§4.10 step 5).
type expander struct {
	ctx        context.Context
	searcher   *search.Searcher
	structured map[string]any
	fields     map[string]Field
	levels     [][]string
}

// generate implements §4.10 steps 5-6: per level, resolve each field's
// possible values, then recurse over the Cartesian product of this
// level's values into the next level.
func (e *expander) generate(reqCtx map[string]any, levelIndex int) ([]map[string]any, error) {
	if levelIndex >= len(e.levels) {
		return []map[string]any{cloneContext(reqCtx)}, nil
	}

	level := e.levels[levelIndex]
	fieldNames := make([]string, 0, len(level))
	valuesByField := make(map[string][]any, len(level))

	for _, name := range level {
		field, ok := e.fields[name]
		if !ok {
			continue
		}
		switch field.Type {
		case FieldItem:
			values, hasValue, err := e.resolveItemField(name, field, reqCtx)
			if err != nil {
				return nil, err
			}
			if !hasValue {
				// No candidate value was supplied for this field at all;
				// it simply doesn't constrain this level.
				continue
			}
			// A value WAS supplied but the search for it came back empty:
			// this zeroes the whole level's Cartesian product rather than
			// just dropping the field's contribution (see DESIGN.md's
			// empty item-expansion resolution).
			fieldNames = append(fieldNames, name)
			valuesByField[name] = values
		case FieldInteger, FieldText, FieldList:
			value := reqCtx[name]
			if value == nil {
				value = e.structured[name]
			}
			fieldNames = append(fieldNames, name)
			valuesByField[name] = []any{value}
		}
	}

	var results []map[string]any
	for _, combination := range cartesianProduct(fieldNames, valuesByField) {
		next := cloneContext(reqCtx)
		for name, value := range combination {
			if value != nil {
				next[name] = value
			}
		}
		sub, err := e.generate(next, levelIndex+1)
		if err != nil {
			return nil, err
		}
		results = append(results, sub...)
	}
	if len(fieldNames) == 0 {
		return e.generate(reqCtx, levelIndex+1)
	}
	return results, nil
}

// resolveItemField runs a Searcher call per candidate value and collects
// each returned item's exported field as a possible value. The second
// return value reports whether any candidate value was supplied at all
// (as opposed to candidate values being supplied but yielding no search
// hits, which resolveItemField reports as a present-but-empty slice).
func (e *expander) resolveItemField(name string, field Field, reqCtx map[string]any) ([]any, bool, error) {
	if field.Item == nil {
		return nil, false, nil
	}
	raw := reqCtx[name]
	if raw == nil {
		raw = e.structured[name]
	}
	values := listify(raw)
	if len(values) == 0 {
		return nil, false, nil
	}

	filters := substituteFilterVars(field.Item.Filter, reqCtx)

	possible := []any{}
	for _, v := range values {
		queryText := fmt.Sprint(v)
		items, _, err := e.searcher.Search(e.ctx, search.Config{
			Filter:  filters,
			Queries: []query.Clause{{Text: &query.TextClause{Query: queryText, Weight: 1}}},
			Limit:   field.Item.Limit,
		}, "", reqCtx)
		if err != nil {
			return nil, true, fmt.Errorf("expand field %q: %w", name, err)
		}
		for _, item := range items {
			possible = append(possible, item.Fields[field.Item.Export])
		}
	}
	return possible, true, nil
}

func cloneContext(ctx map[string]any) map[string]any {
	out := make(map[string]any, len(ctx))
	for k, v := range ctx {
		out[k] = v
	}
	return out
}

// cartesianProduct returns one map per combination of valuesByField,
// iterating fieldNames in order for determinism.
func cartesianProduct(fieldNames []string, valuesByField map[string][]any) []map[string]any {
	combos := []map[string]any{{}}
	for _, name := range fieldNames {
		values := valuesByField[name]
		var next []map[string]any
		for _, combo := range combos {
			for _, v := range values {
				extended := make(map[string]any, len(combo)+1)
				for k, existing := range combo {
					extended[k] = existing
				}
				extended[name] = v
				next = append(next, extended)
			}
		}
		combos = next
	}
	return combos
}

// addNonDynamicFields post-injects literal field values (§4.10 step 6).
func addNonDynamicFields(fields map[string]Field, items []map[string]any) {
	for name, field := range fields {
		if field.Value == nil {
			continue
		}
		for _, item := range items {
			item[name] = field.Value
		}
	}
}
