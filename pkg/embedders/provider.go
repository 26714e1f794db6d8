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

// Package embedders provides pluggable embedding-vector generation: an
// OpenAI vendor backend and a self-hosted HTTP service backend, both behind
// one Provider interface built from config.EmbedderConfig the way hector
// builds its vector-store providers from a Type discriminator.
package embedders

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kadirpekel/semhub/pkg/config"
	"github.com/kadirpekel/semhub/pkg/registry"
)

// Provider generates embedding vectors for text.
type Provider interface {
	// Embed returns the embedding vector for a single string.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns embedding vectors for multiple strings, in order.
	// Both backends send the strings in requests of at most the configured
	// batch size each.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	GetDimension() int
	GetModelName() string
	Close() error
}

// Registry holds named Provider instances built from config.EmbedderConfig.
type Registry struct {
	*registry.BaseRegistry[Provider]
}

// NewRegistry creates an empty embedder registry.
func NewRegistry() *Registry {
	return &Registry{BaseRegistry: registry.NewBaseRegistry[Provider]()}
}

// CreateFromConfig builds a Provider from cfg, registers it under name and
// returns it.
func (r *Registry) CreateFromConfig(name string, cfg *config.EmbedderConfig) (Provider, error) {
	if name == "" {
		return nil, fmt.Errorf("embedder name cannot be empty")
	}
	if cfg == nil {
		return nil, fmt.Errorf("embedder config cannot be nil")
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedder config %q: %w", name, err)
	}

	var provider Provider
	var err error
	switch cfg.Type {
	case "openai":
		provider = newOpenAIEmbedder(cfg)
	case "hosted":
		provider = newHostedEmbedder(cfg)
	default:
		return nil, fmt.Errorf("unsupported embedder type %q (supported: openai, hosted)", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder %q: %w", name, err)
	}

	if err := r.Register(name, provider); err != nil {
		return nil, fmt.Errorf("failed to register embedder %q: %w", name, err)
	}
	return provider, nil
}

// Resolve returns the provider registered under name.
func (r *Registry) Resolve(name string) (Provider, error) {
	provider, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("embedder provider %q not found", name)
	}
	return provider, nil
}

// FieldsToString canonicalizes a field-name -> value-list map into the
// single string that gets embedded, e.g. {"brand": ["nike"], "color":
// ["red","black"]} -> "brand=nike, color=red black". Keys are sorted so the
// same field set always produces the same string (and therefore the same
// cache key) regardless of map iteration order — ported from
// original_source/llm/embeddings.py:fields_to_string.
func FieldsToString(fields map[string][]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		values := fields[k]
		if len(values) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", k, strings.Join(values, " ")))
	}
	return strings.Join(parts, ", ")
}
