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

// Package config provides configuration loading and management for semhub.
//
// semhub is config-first: organizations, collections, LLMs, embedders and
// the indexer backend are defined in YAML and the runtime builds the
// corresponding registries from it.
//
// Example config:
//
//	organizations:
//	  acme:
//	    name: acme
//
//	collections:
//	  products:
//	    organization: acme
//	    indexer: qdrant
//	    embeddings_model: default
//	    stemmers: [english]
//
//	llms:
//	  default:
//	    type: openai
//	    model: gpt-4o-mini
//	    api_key: ${OPENAI_API_KEY}
//
//	embedders:
//	  default:
//	    type: openai
//	    model: text-embedding-3-small
//
//	store:
//	  connection_string: ${POSTGRES_CONNECTION_STRING}
//
//	server:
//	  address: ":8080"
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration structure.
type Config struct {
	// Organizations defines the known tenants. Collections are created
	// lazily under an organization on first reference, so this section may
	// be left empty; naming an organization here lets its config be
	// validated up front.
	Organizations map[string]*OrganizationConfig `yaml:"organizations,omitempty"`

	// Collections defines the named index units.
	Collections map[string]*CollectionConfig `yaml:"collections,omitempty"`

	// LLMs defines available LLM providers.
	LLMs map[string]*LLMConfig `yaml:"llms,omitempty"`

	// Embedders defines available embedding providers.
	Embedders map[string]*EmbedderConfig `yaml:"embedders,omitempty"`

	// Qdrant configures the external vector-index Indexer backend, shared
	// by every collection configured with indexer: qdrant.
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`

	// Store configures the Postgres-backed item store.
	Store StoreConfig `yaml:"store,omitempty"`

	// Cache configures the KV cache backend (§4.1).
	Cache CacheConfig `yaml:"cache,omitempty"`

	// Lock configures the temporal lock backend (§4.12, §9).
	Lock LockConfig `yaml:"lock,omitempty"`

	// Maintenance configures the periodic dirty-item and retention jobs.
	Maintenance MaintenanceConfig `yaml:"maintenance,omitempty"`

	// Aggregation holds fallback heavy/light LLM names for the Aggregator.
	Aggregation AggregationDefaultsConfig `yaml:"aggregation,omitempty"`

	// Server configures the HTTP surface.
	Server ServerConfig `yaml:"server,omitempty"`

	// Logger configures logging behavior.
	Logger LoggerConfig `yaml:"logger,omitempty"`

	// Organization is the default organization name new collections are
	// attributed to when none is specified (mirrors the ORGANIZATION env
	// var in original_source/app/app/settings.py).
	Organization string `yaml:"organization,omitempty"`
}

// SetDefaults applies default values to the config.
func (c *Config) SetDefaults() {
	if c.Organizations == nil {
		c.Organizations = make(map[string]*OrganizationConfig)
	}
	if c.Collections == nil {
		c.Collections = make(map[string]*CollectionConfig)
	}
	if c.LLMs == nil {
		c.LLMs = make(map[string]*LLMConfig)
	}
	if c.Embedders == nil {
		c.Embedders = make(map[string]*EmbedderConfig)
	}
	if c.Organization == "" {
		c.Organization = "default-org"
	}
	if c.Qdrant != nil {
		c.Qdrant.SetDefaults()
	}

	for name, llm := range c.LLMs {
		if llm == nil {
			llm = &LLMConfig{}
			c.LLMs[name] = llm
		}
		llm.SetDefaults()
	}

	for name, emb := range c.Embedders {
		if emb == nil {
			emb = &EmbedderConfig{}
			c.Embedders[name] = emb
		}
		emb.SetDefaults()
	}

	for name, col := range c.Collections {
		if col == nil {
			col = &CollectionConfig{}
			c.Collections[name] = col
		}
		col.SetDefaults()
		if col.Organization == "" {
			col.Organization = c.Organization
		}
	}

	c.Store.SetDefaults()
	c.Cache.SetDefaults()
	c.Lock.SetDefaults()
	c.Maintenance.SetDefaults()
	c.Aggregation.SetDefaults()
	c.Server.SetDefaults()
	c.Logger.SetDefaults()
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	for name, llm := range c.LLMs {
		if llm == nil {
			continue
		}
		if err := llm.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("llm %q: %v", name, err))
		}
	}

	for name, emb := range c.Embedders {
		if emb == nil {
			continue
		}
		if err := emb.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("embedder %q: %v", name, err))
		}
	}

	for name, col := range c.Collections {
		if col == nil {
			continue
		}
		if err := col.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("collection %q: %v", name, err))
		}
		if col.Indexer == "qdrant" && c.Qdrant == nil {
			errs = append(errs, fmt.Sprintf("collection %q uses indexer \"qdrant\" but no top-level qdrant config is set", name))
		}
		if col.EmbeddingsModel != "" {
			if _, ok := c.Embedders[col.EmbeddingsModel]; !ok {
				errs = append(errs, fmt.Sprintf("collection %q references undefined embedder %q", name, col.EmbeddingsModel))
			}
		}
	}

	if err := c.Store.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("store: %v", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// GetCollection returns the collection config by name.
func (c *Config) GetCollection(name string) (*CollectionConfig, bool) {
	col, ok := c.Collections[name]
	return col, ok
}

// GetLLM returns the LLM config by name.
func (c *Config) GetLLM(name string) (*LLMConfig, bool) {
	llm, ok := c.LLMs[name]
	return llm, ok
}

// GetEmbedder returns the embedder config by name.
func (c *Config) GetEmbedder(name string) (*EmbedderConfig, bool) {
	emb, ok := c.Embedders[name]
	return emb, ok
}

// ListCollections returns the names of all configured collections.
func (c *Config) ListCollections() []string {
	names := make([]string, 0, len(c.Collections))
	for name := range c.Collections {
		names = append(names, name)
	}
	return names
}
