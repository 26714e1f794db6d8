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

package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kadirpekel/semhub/pkg/hashutil"
	"github.com/kadirpekel/semhub/pkg/llms"
	"github.com/kadirpekel/semhub/pkg/store"
)

var errBoom = errors.New("boom")

func hashDescription(s string) string { return hashutil.StableString(s) }

// fakeProvider is a minimal llms.Provider test double returning a canned
// SingleQuery answer without making any network call.
type fakeProvider struct {
	answer string
	err    error
	calls  int
}

func (f *fakeProvider) SingleQuery(ctx context.Context, prompt string, files []llms.FileInput) (string, error) {
	f.calls++
	return f.answer, f.err
}

func (f *fakeProvider) FunctionQuery(ctx context.Context, messages []llms.Message, tools []llms.ToolDefinition) ([]llms.ToolCall, error) {
	return nil, nil
}

func (f *fakeProvider) GetModelName() string { return "fake" }
func (f *fakeProvider) Close() error         { return nil }

// fakeCache is an in-memory cache.Cache test double.
type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, bool) {
	v, ok := c.data[key]
	return v, ok
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	c.data[key] = value
}

func (c *fakeCache) Close() error { return nil }

func TestComputeDescriptionPrefersExplicitDescription(t *testing.T) {
	p := &Pipeline{}
	item := SimpleItem{Description: "explicit"}
	fields := map[string]store.FieldValue{"title": "ignored"}
	if got := p.computeDescription(item, fields); got != "explicit" {
		t.Fatalf("computeDescription = %q, want %q", got, "explicit")
	}
}

func TestComputeDescriptionProjectsDescriptionFromFields(t *testing.T) {
	p := &Pipeline{DescriptionFromFields: []string{"title", "color"}}
	fields := map[string]store.FieldValue{
		"title": "Shoe",
		"color": "red",
		"price": 10.0,
	}
	got := p.computeDescription(SimpleItem{}, fields)
	want := "title is Shoe, color is red"
	if got != want {
		t.Fatalf("computeDescription = %q, want %q", got, want)
	}
}

func TestComputeDescriptionJoinsAllFieldsSorted(t *testing.T) {
	p := &Pipeline{}
	fields := map[string]store.FieldValue{
		"title": "Shoe",
		"color": "red",
	}
	got := p.computeDescription(SimpleItem{}, fields)
	want := "color is red, title is Shoe"
	if got != want {
		t.Fatalf("computeDescription = %q, want %q", got, want)
	}
}

func TestJoinFieldsSkipsMissingAndEmptyFields(t *testing.T) {
	fields := map[string]store.FieldValue{
		"title": "Shoe",
		"tags":  []any{},
	}
	got := joinFields([]string{"title", "tags", "missing"}, fields)
	want := "title is Shoe"
	if got != want {
		t.Fatalf("joinFields = %q, want %q", got, want)
	}
}

func TestFieldWordsJoinsListElements(t *testing.T) {
	words := fieldWords([]any{"red", "blue", 3})
	want := []string{"red", "blue", "3"}
	if len(words) != len(want) {
		t.Fatalf("words = %v, want %v", words, want)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Fatalf("words[%d] = %q, want %q", i, words[i], want[i])
		}
	}
}

func TestFieldWordsNilReturnsNil(t *testing.T) {
	if got := fieldWords(nil); got != nil {
		t.Fatalf("fieldWords(nil) = %v, want nil", got)
	}
}

func TestInferFieldType(t *testing.T) {
	cases := []struct {
		value any
		want  string
	}{
		{true, "boolean"},
		{1.0, "number"},
		{int64(1), "number"},
		{[]any{"a"}, "list"},
		{map[string]any{"a": 1}, "object"},
		{"hello", "string"},
	}
	for _, c := range cases {
		if got := inferFieldType(c.value); got != c.want {
			t.Fatalf("inferFieldType(%#v) = %q, want %q", c.value, got, c.want)
		}
	}
}

func TestPreprocessDescriptionUsesCacheOnHit(t *testing.T) {
	cache := newFakeCache()
	provider := &fakeProvider{answer: "should not be used"}
	p := &Pipeline{Preprocess: true, LightLLM: provider, Cache: cache, CacheTTL: time.Minute}

	key := "ingest:preprocess:" + hashDescription("plain description")
	cache.data[key] = []byte("cached rewrite")

	got := p.preprocessDescription(context.Background(), "plain description")
	if got != "cached rewrite" {
		t.Fatalf("preprocessDescription = %q, want %q", got, "cached rewrite")
	}
	if provider.calls != 0 {
		t.Fatalf("provider.calls = %d, want 0 (cache hit should skip LLM)", provider.calls)
	}
}

func TestPreprocessDescriptionFallsBackOnLLMError(t *testing.T) {
	cache := newFakeCache()
	provider := &fakeProvider{err: errBoom}
	p := &Pipeline{Preprocess: true, LightLLM: provider, Cache: cache, CacheTTL: time.Minute}

	got := p.preprocessDescription(context.Background(), "plain description")
	if got != "plain description" {
		t.Fatalf("preprocessDescription = %q, want fallback to original", got)
	}
}

func TestPreprocessDescriptionCachesRewrite(t *testing.T) {
	cache := newFakeCache()
	provider := &fakeProvider{answer: "rewritten"}
	p := &Pipeline{Preprocess: true, LightLLM: provider, Cache: cache, CacheTTL: time.Minute}

	got := p.preprocessDescription(context.Background(), "plain description")
	if got != "rewritten" {
		t.Fatalf("preprocessDescription = %q, want %q", got, "rewritten")
	}

	key := "ingest:preprocess:" + hashDescription("plain description")
	if _, ok := cache.data[key]; !ok {
		t.Fatalf("expected rewrite to be cached under %q", key)
	}
}
