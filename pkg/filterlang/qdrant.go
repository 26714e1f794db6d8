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

package filterlang

import (
	"strconv"

	"github.com/qdrant/go-client/qdrant"
)

// CompileQdrant translates a Filter tree into a qdrant.Filter, the
// qdrant-backend half of the backend-predicate-dialect translation
// described in §4.5 step 1. Grounded on pkg/vector/qdrant.go's
// buildQdrantFilter: qdrant.Condition/FieldCondition/Match constructed the
// same way, generalized here to the and/or/not tree and the gte/lte/in/
// overlaps/contains operators that function didn't need to handle.
func CompileQdrant(f *Filter) *qdrant.Filter {
	if f == nil {
		return nil
	}
	if f.Not != nil {
		return &qdrant.Filter{MustNot: []*qdrant.Condition{conditionFor(f.Not)}}
	}
	if len(f.And) > 0 {
		conds := make([]*qdrant.Condition, len(f.And))
		for i, c := range f.And {
			conds[i] = conditionFor(c)
		}
		return &qdrant.Filter{Must: conds}
	}
	if len(f.Or) > 0 {
		conds := make([]*qdrant.Condition, len(f.Or))
		for i, c := range f.Or {
			conds[i] = conditionFor(c)
		}
		return &qdrant.Filter{Should: conds}
	}
	return &qdrant.Filter{Must: []*qdrant.Condition{conditionFor(f)}}
}

// conditionFor wraps a single Filter node as one qdrant.Condition, nesting
// a sub-filter when the node is itself a boolean combinator.
func conditionFor(f *Filter) *qdrant.Condition {
	if f.Not != nil || len(f.And) > 0 || len(f.Or) > 0 {
		return &qdrant.Condition{
			ConditionOneOf: &qdrant.Condition_Filter{Filter: CompileQdrant(f)},
		}
	}

	switch f.Op {
	case OpGTE:
		if n, ok := toFloat(f.Value); ok {
			return fieldCondition(f.Field, &qdrant.FieldCondition{Key: f.Field, Range: &qdrant.Range{Gte: &n}})
		}
	case OpLTE:
		if n, ok := toFloat(f.Value); ok {
			return fieldCondition(f.Field, &qdrant.FieldCondition{Key: f.Field, Range: &qdrant.Range{Lte: &n}})
		}
	case OpIn, OpOverlaps:
		values := toList(f.Value)
		conds := make([]*qdrant.Condition, len(values))
		for i, v := range values {
			conds[i] = keywordMatch(f.Field, v)
		}
		return &qdrant.Condition{ConditionOneOf: &qdrant.Condition_Filter{Filter: &qdrant.Filter{Should: conds}}}
	case OpContains:
		// Qdrant's Match has no "contains-all" primitive; approximate with
		// an AND of individual keyword matches on the same field.
		values := toList(f.Value)
		conds := make([]*qdrant.Condition, len(values))
		for i, v := range values {
			conds[i] = keywordMatch(f.Field, v)
		}
		return &qdrant.Condition{ConditionOneOf: &qdrant.Condition_Filter{Filter: &qdrant.Filter{Must: conds}}}
	}
	return keywordMatch(f.Field, f.Value)
}

func keywordMatch(field string, value any) *qdrant.Condition {
	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{
				Key: field,
				Match: &qdrant.Match{
					MatchValue: &qdrant.Match_Keyword{Keyword: toString(value)},
				},
			},
		},
	}
}

func fieldCondition(field string, fc *qdrant.FieldCondition) *qdrant.Condition {
	return &qdrant.Condition{ConditionOneOf: &qdrant.Condition_Field{Field: fc}}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if n, ok := toFloat(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}
