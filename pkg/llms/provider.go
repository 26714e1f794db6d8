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

package llms

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kadirpekel/semhub/pkg/config"
	"github.com/kadirpekel/semhub/pkg/httpclient"
	"github.com/kadirpekel/semhub/pkg/registry"
)

// Provider is a named LLM the Aggregator and Searcher can call by
// "provider:model" name (DEFAULT_LLM_PROVIDER_AND_MODEL, see spec §6).
type Provider interface {
	// SingleQuery sends a one-shot prompt and returns the text completion.
	// Used for the Aggregator's classification step and plain generation.
	SingleQuery(ctx context.Context, prompt string, files []FileInput) (string, error)

	// FunctionQuery sends a conversation plus a set of callable tools and
	// returns whichever tool calls the model chose to make. Used for the
	// Aggregator's query-to-structured-query step.
	FunctionQuery(ctx context.Context, messages []Message, tools []ToolDefinition) ([]ToolCall, error)

	GetModelName() string
	Close() error
}

// Registry holds named Provider instances, built from config.LLMConfig
// entries the way hector's provider registries are built: one factory
// switch over a Type discriminator, registered under a caller-chosen name.
type Registry struct {
	*registry.BaseRegistry[Provider]
}

// NewRegistry creates an empty LLM registry.
func NewRegistry() *Registry {
	return &Registry{BaseRegistry: registry.NewBaseRegistry[Provider]()}
}

// CreateFromConfig builds a Provider from cfg, registers it under name and
// returns it.
func (r *Registry) CreateFromConfig(name string, cfg *config.LLMConfig) (Provider, error) {
	if name == "" {
		return nil, fmt.Errorf("llm name cannot be empty")
	}
	if cfg == nil {
		return nil, fmt.Errorf("llm config cannot be nil")
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid llm config %q: %w", name, err)
	}

	var provider Provider
	switch cfg.Type {
	case "openai", "groq":
		provider = newChatCompletionProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported llm type %q (supported: openai, groq)", cfg.Type)
	}

	if err := r.Register(name, provider); err != nil {
		return nil, fmt.Errorf("failed to register llm %q: %w", name, err)
	}
	return provider, nil
}

// Resolve returns the provider registered under name, or an error if no
// such provider was configured.
func (r *Registry) Resolve(name string) (Provider, error) {
	provider, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("llm provider %q not found", name)
	}
	return provider, nil
}

// httpClientFor builds the shared retrying transport used by both chat
// completion providers.
func httpClientFor(timeout string) *httpclient.Client {
	d, err := config.ParseDuration(timeout)
	if err != nil || d <= 0 {
		d = 30 * time.Second
	}
	return httpclient.New(
		httpclient.WithHTTPClient(&http.Client{Timeout: d}),
		httpclient.WithMaxRetries(3),
		httpclient.WithRetryStrategy(httpclient.DefaultStrategy),
		httpclient.WithHeaderParser(httpclient.ParseOpenAIHeaders),
	)
}
