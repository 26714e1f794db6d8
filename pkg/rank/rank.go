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

// Package rank implements the §4.8 Ranker: a pluggable re-ordering step
// applied to the Similarity Engine's output. ScoreRanker evaluates an
// arithmetic expression over the item's `score` and `score.<name>`
// identifiers; RandomRanker shuffles uniformly. Both re-sort descending
// (or randomly) and truncate to the configured limit.
package rank

import (
	"fmt"
	"math/rand"
	"regexp"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// The score expression language (§4.8/§4.12) overloads one identifier,
// `score`: used bare it's the hit similarity; dotted (`score.<name>`) it's
// a named sub-score, missing names defaulting to 0. expr-lang has no
// notion of an identifier that is simultaneously a scalar and a
// field-accessible value, so `score`/`score.<name>` are rewritten to two
// distinct env identifiers before compiling.
var (
	scoreDotName  = regexp.MustCompile(`\bscore\.([A-Za-z_][A-Za-z0-9_]*)\b`)
	scoreBareName = regexp.MustCompile(`\bscore\b`)
)

func rewriteScoreIdentifiers(expression string) string {
	expression = scoreDotName.ReplaceAllString(expression, "score_by.$1")
	return scoreBareName.ReplaceAllString(expression, "score_total")
}

// Scored is the minimal shape a Ranker needs: an overall score plus the
// per-clause score breakdown the score expression can reference as
// `score.<name>`.
type Scored struct {
	Score       float64
	ScoreByName map[string]float64
}

// Ranker re-orders a slice of T given a scoring/selection function,
// truncating to limit.
type Ranker interface {
	Rank(items []any, scores []Scored, limit int) ([]any, error)
}

// ScoreRanker evaluates Expression over each item's score breakdown,
// sorts items by the resulting numeric value descending, and truncates to
// limit. Default expression is "score" (keep the combined similarity
// score's ordering unchanged).
type ScoreRanker struct {
	Expression string
	program    *vm.Program
}

// NewScoreRanker compiles expression once; an empty expression defaults to
// "score".
func NewScoreRanker(expression string) (*ScoreRanker, error) {
	if expression == "" {
		expression = "score"
	}
	program, err := expr.Compile(rewriteScoreIdentifiers(expression), expr.Env(scoreEnv{}))
	if err != nil {
		return nil, fmt.Errorf("compile rank expression %q: %w", expression, err)
	}
	return &ScoreRanker{Expression: expression, program: program}, nil
}

// scoreEnv is the expr evaluation environment after identifier rewriting:
// `score_total` backs bare `score`, `score_by.<name>` backs `score.<name>`
// (missing names read as the map's zero value, 0).
type scoreEnv struct {
	ScoreTotal float64            `expr:"score_total"`
	ScoreBy    map[string]float64 `expr:"score_by"`
}

func (r *ScoreRanker) Rank(items []any, scores []Scored, limit int) ([]any, error) {
	if len(items) != len(scores) {
		return nil, fmt.Errorf("rank: items (%d) and scores (%d) length mismatch", len(items), len(scores))
	}

	type ranked struct {
		item  any
		value float64
	}
	out := make([]ranked, len(items))
	for i, s := range scores {
		env := scoreEnv{ScoreTotal: s.Score, ScoreBy: s.ScoreByName}
		result, err := expr.Run(r.program, env)
		if err != nil {
			return nil, fmt.Errorf("rank: evaluate expression: %w", err)
		}
		value, ok := toFloat(result)
		if !ok {
			return nil, fmt.Errorf("rank: expression %q did not produce a number", r.Expression)
		}
		out[i] = ranked{item: items[i], value: value}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].value > out[j].value })

	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	result := make([]any, len(out))
	for i, r := range out {
		result[i] = r.item
	}
	return result, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// RandomRanker shuffles items uniformly and truncates to limit, ignoring
// scores entirely.
type RandomRanker struct {
	Rand *rand.Rand // nil uses the package-level default source
}

func (r *RandomRanker) Rank(items []any, scores []Scored, limit int) ([]any, error) {
	out := make([]any, len(items))
	copy(out, items)

	shuffle := rand.Shuffle
	if r.Rand != nil {
		shuffle = r.Rand.Shuffle
	}
	shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })

	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

var (
	_ Ranker = (*ScoreRanker)(nil)
	_ Ranker = (*RandomRanker)(nil)
)
