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

// Package filterlang implements the generic filter predicate tree
// (and/or/not over eq/gte/lte/contains/in/overlaps leaves) and compiles it
// into a backend predicate: an in-process evaluator for the sql Indexer
// backend, a qdrant.Filter for the qdrant backend. Ported from
// original_source/utils/json_filter_query.py's recursive_build/
// build_condition.
package filterlang

import (
	"fmt"
	"strings"
)

// Op is a leaf comparison operator.
type Op string

const (
	OpEq       Op = "eq"
	OpGTE      Op = "gte"
	OpLTE      Op = "lte"
	OpContains Op = "contains" // list-intersect-all: field's list contains every element of Value
	OpIn       Op = "in"       // any-of: field's scalar equals one of Value
	OpOverlaps Op = "overlaps" // list-intersect-any: field's list shares any element with Value
)

// Filter is a node in the and/or/not/leaf filter tree. Exactly one of
// (And, Or, Not, Field) is set.
type Filter struct {
	And []*Filter
	Or  []*Filter
	Not *Filter

	Field string
	Op    Op
	Value any
}

// NormalizeField lowercases a field name and replaces spaces, dashes and
// dots with underscores, matching the leaf-normalization rule in §4.5.
func NormalizeField(name string) string {
	name = strings.ToLower(name)
	replacer := strings.NewReplacer(" ", "_", "-", "_", ".", "_")
	return replacer.Replace(name)
}

// Eq builds a leaf with the default scalar-equality operator.
func Eq(field string, value any) *Filter {
	return &Filter{Field: NormalizeField(field), Op: OpEq, Value: value}
}

// Leaf builds a leaf with an explicit operator.
func Leaf(field string, op Op, value any) *Filter {
	return &Filter{Field: NormalizeField(field), Op: op, Value: value}
}

// And combines filters with AND. A single-element or empty list collapses.
func And(filters ...*Filter) *Filter {
	filters = compact(filters)
	if len(filters) == 1 {
		return filters[0]
	}
	return &Filter{And: filters}
}

// Or combines filters with OR.
func Or(filters ...*Filter) *Filter {
	filters = compact(filters)
	if len(filters) == 1 {
		return filters[0]
	}
	return &Filter{Or: filters}
}

// Not negates a filter.
func Not(f *Filter) *Filter {
	return &Filter{Not: f}
}

func compact(filters []*Filter) []*Filter {
	out := make([]*Filter, 0, len(filters))
	for _, f := range filters {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

// FromMap builds a Filter tree from a generic fields map. Each entry is a
// scalar-equality leaf; maps shaped as {"op": name, "value": v} build an
// explicit-operator leaf. This is the "fields{fields}" Query Parser clause
// (§4.6) and the §4.7 leaf-field-map merge target.
func FromMap(fields map[string]any) *Filter {
	leaves := make([]*Filter, 0, len(fields))
	for field, v := range fields {
		if spec, ok := v.(map[string]any); ok {
			if opName, ok := spec["op"].(string); ok {
				leaves = append(leaves, Leaf(field, Op(opName), spec["value"]))
				continue
			}
		}
		leaves = append(leaves, Eq(field, v))
	}
	return And(leaves...)
}

// leafOps maps the §6 leaf operator keys to their Op constant. "eq" is
// included explicitly even though it's also the default for a bare scalar.
var leafOps = map[string]Op{
	"eq":       OpEq,
	"gte":      OpGTE,
	"lte":      OpLTE,
	"in":       OpIn,
	"contains": OpContains,
	"overlaps": OpOverlaps,
}

// ParseJSON recursively parses a decoded JSON value against the §6 filter
// grammar:
//
//	filter := {"and": [filter, …]} | {"or": [filter, …]} | {"not": filter} | {field: leaf}
//	leaf   := scalar | {"eq"|"gte"|"lte": scalar} | {"in": [scalar, …]}
//	        | {"contains": scalar | [scalar]} | {"overlaps": [scalar]} | {"not": leaf}
//
// v is typically the result of unmarshaling a JSON object into
// map[string]any (e.g. from a request's "filter" field). A nil or empty map
// parses to a nil Filter (always matches).
func ParseJSON(v any) (*Filter, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("filterlang: expected a JSON object, got %T", v)
	}
	if len(m) == 0 {
		return nil, nil
	}
	if rawAnd, ok := m["and"]; ok {
		return parseFilterList(rawAnd, And)
	}
	if rawOr, ok := m["or"]; ok {
		return parseFilterList(rawOr, Or)
	}
	if rawNot, ok := m["not"]; ok {
		inner, err := ParseJSON(rawNot)
		if err != nil {
			return nil, err
		}
		return Not(inner), nil
	}
	return parseFieldMap(m)
}

func parseFilterList(v any, combine func(...*Filter) *Filter) (*Filter, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("filterlang: expected an array of filters, got %T", v)
	}
	children := make([]*Filter, 0, len(list))
	for _, item := range list {
		child, err := ParseJSON(item)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return combine(children...), nil
}

func parseFieldMap(m map[string]any) (*Filter, error) {
	leaves := make([]*Filter, 0, len(m))
	for field, raw := range m {
		fieldLeaves, err := parseLeaf(field, raw)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, fieldLeaves...)
	}
	return And(leaves...), nil
}

// parseLeaf builds the one or more leaves a single field's spec produces —
// more than one when the spec carries several operator keys at once (e.g.
// {"gte": 100, "lte": 200}, implicitly ANDed).
func parseLeaf(field string, raw any) ([]*Filter, error) {
	spec, ok := raw.(map[string]any)
	if !ok {
		return []*Filter{Eq(field, raw)}, nil
	}
	if rawNot, ok := spec["not"]; ok {
		inner, err := parseLeaf(field, rawNot)
		if err != nil {
			return nil, err
		}
		return []*Filter{Not(And(inner...))}, nil
	}
	leaves := make([]*Filter, 0, len(spec))
	for key, val := range spec {
		op, ok := leafOps[key]
		if !ok {
			return nil, fmt.Errorf("filterlang: unknown leaf operator %q for field %q", key, field)
		}
		leaves = append(leaves, Leaf(field, op, val))
	}
	if len(leaves) == 0 {
		return nil, fmt.Errorf("filterlang: empty leaf spec for field %q", field)
	}
	return leaves, nil
}

// MergeFieldMaps shallow-unions leaf field maps, last writer wins — used by
// §4.7 step 3 to merge multiple `fields{}` Query Parser clauses into one.
func MergeFieldMaps(maps ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// Matches evaluates f against item's field map — the sql Indexer backend's
// predicate evaluator.
func Matches(f *Filter, item map[string]any) bool {
	if f == nil {
		return true
	}
	if f.Not != nil {
		return !Matches(f.Not, item)
	}
	if len(f.And) > 0 {
		for _, child := range f.And {
			if !Matches(child, item) {
				return false
			}
		}
		return true
	}
	if len(f.Or) > 0 {
		for _, child := range f.Or {
			if Matches(child, item) {
				return true
			}
		}
		return false
	}
	return matchesLeaf(f, item[f.Field])
}

func matchesLeaf(f *Filter, fieldValue any) bool {
	switch f.Op {
	case OpEq, "":
		return equalScalar(fieldValue, f.Value)
	case OpGTE:
		a, b, ok := asFloats(fieldValue, f.Value)
		return ok && a >= b
	case OpLTE:
		a, b, ok := asFloats(fieldValue, f.Value)
		return ok && a <= b
	case OpContains:
		have, ok := fieldValue.([]any)
		if !ok {
			return false
		}
		want := toList(f.Value)
		for _, w := range want {
			if !listContains(have, w) {
				return false
			}
		}
		return true
	case OpIn:
		for _, w := range toList(f.Value) {
			if equalScalar(fieldValue, w) {
				return true
			}
		}
		return false
	case OpOverlaps:
		have, ok := fieldValue.([]any)
		if !ok {
			return false
		}
		for _, w := range toList(f.Value) {
			if listContains(have, w) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func equalScalar(a, b any) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func toList(v any) []any {
	if v == nil {
		return nil
	}
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}

func listContains(haystack []any, v any) bool {
	for _, h := range haystack {
		if equalScalar(h, v) {
			return true
		}
	}
	return false
}

func asFloats(a, b any) (float64, float64, bool) {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	return af, bf, aok && bok
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
