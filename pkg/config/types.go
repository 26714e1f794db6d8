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

package config

import "fmt"

// OrganizationConfig is a tenant. Collections are created lazily under it.
type OrganizationConfig struct {
	Name string `yaml:"name,omitempty"`
}

// CollectionConfig is a named index unit scoped to an organization. Carries
// both yaml tags (static config file) and json tags (PUT /api/collections).
type CollectionConfig struct {
	Organization    string   `yaml:"organization,omitempty" json:"organization,omitempty"`
	Indexer         string   `yaml:"indexer,omitempty" json:"indexer,omitempty"`                   // "sql" | "qdrant"
	EmbeddingsModel string   `yaml:"embeddings_model,omitempty" json:"embeddings_model,omitempty"` // references an Embedders entry
	Stemmers        []string `yaml:"stemmers,omitempty" json:"stemmers,omitempty"`                 // ordered, e.g. ["english","greek"]
	DefaultLightLLM string   `yaml:"default_light_llm,omitempty" json:"default_light_llm,omitempty"`
	DefaultHeavyLLM string   `yaml:"default_heavy_llm,omitempty" json:"default_heavy_llm,omitempty"`
}

// SetDefaults applies default values to a CollectionConfig.
func (c *CollectionConfig) SetDefaults() {
	if c.Indexer == "" {
		c.Indexer = "sql"
	}
}

// Validate checks a CollectionConfig for errors.
func (c *CollectionConfig) Validate() error {
	switch c.Indexer {
	case "sql", "qdrant":
	default:
		return fmt.Errorf("unknown indexer %q (must be \"sql\" or \"qdrant\")", c.Indexer)
	}
	return nil
}

// LLMConfig configures one named LLM provider instance.
type LLMConfig struct {
	Type    string `yaml:"type,omitempty"` // "openai" | "groq"
	Model   string `yaml:"model,omitempty"`
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	Timeout string `yaml:"timeout,omitempty"`
}

// SetDefaults applies default values to an LLMConfig.
func (c *LLMConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = "openai"
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.APIKey == "" {
		c.APIKey = GetProviderAPIKey(c.Type)
	}
	switch c.Type {
	case "openai":
		if c.Model == "" {
			c.Model = "gpt-4o-mini"
		}
		if c.BaseURL == "" {
			c.BaseURL = "https://api.openai.com/v1"
		}
	case "groq":
		if c.Model == "" {
			c.Model = "llama-3.2-3b-preview"
		}
		if c.BaseURL == "" {
			c.BaseURL = "https://api.groq.com/openai/v1"
		}
	}
}

// Validate checks an LLMConfig for errors.
func (c *LLMConfig) Validate() error {
	switch c.Type {
	case "openai", "groq":
	default:
		return fmt.Errorf("unknown llm type %q", c.Type)
	}
	if c.APIKey == "" {
		return fmt.Errorf("missing api_key for llm type %q", c.Type)
	}
	return nil
}

// EmbedderConfig configures one named embedding provider instance.
type EmbedderConfig struct {
	Type      string `yaml:"type,omitempty"` // "openai" | "hosted"
	Model     string `yaml:"model,omitempty"`
	APIKey    string `yaml:"api_key,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
	Dimension int    `yaml:"dimension,omitempty"`
	BatchSize int    `yaml:"batch_size,omitempty"`
}

var supportedDimensions = map[int]bool{384: true, 768: true, 1536: true, 3072: true}

// SetDefaults applies default values to an EmbedderConfig.
func (c *EmbedderConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = "openai"
	}
	if c.BatchSize == 0 {
		c.BatchSize = 512
	}
	switch c.Type {
	case "openai":
		if c.Model == "" {
			c.Model = "text-embedding-3-small"
		}
		if c.BaseURL == "" {
			c.BaseURL = "https://api.openai.com/v1"
		}
		if c.APIKey == "" {
			c.APIKey = GetProviderAPIKey("openai")
		}
		if c.Dimension == 0 {
			switch c.Model {
			case "text-embedding-3-large":
				c.Dimension = 3072
			default:
				c.Dimension = 1536
			}
		}
	case "hosted":
		if c.Dimension == 0 {
			c.Dimension = 768
		}
	}
}

// Validate checks an EmbedderConfig for errors.
func (c *EmbedderConfig) Validate() error {
	switch c.Type {
	case "openai", "hosted":
	default:
		return fmt.Errorf("unknown embedder type %q", c.Type)
	}
	if !supportedDimensions[c.Dimension] {
		return fmt.Errorf("unsupported embedding dimension %d (must be one of 384, 768, 1536, 3072)", c.Dimension)
	}
	if c.Type == "hosted" && c.BaseURL == "" {
		return fmt.Errorf("hosted embedder requires base_url")
	}
	return nil
}

// QdrantConfig configures the external vector-index Indexer backend.
type QdrantConfig struct {
	Host   string `yaml:"host,omitempty"`
	Port   int    `yaml:"port,omitempty"`
	APIKey string `yaml:"api_key,omitempty"`
	UseTLS bool   `yaml:"use_tls,omitempty"`
}

// SetDefaults applies default values to a QdrantConfig.
func (c *QdrantConfig) SetDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6334
	}
}

// StoreConfig configures the Postgres-backed item store.
type StoreConfig struct {
	ConnectionString string `yaml:"connection_string,omitempty"`
	MaxOpenConns     int    `yaml:"max_open_conns,omitempty"`
	MaxIdleConns     int    `yaml:"max_idle_conns,omitempty"`
	ConnMaxLifetime  string `yaml:"conn_max_lifetime,omitempty"`
}

// SetDefaults applies default values to a StoreConfig.
func (c *StoreConfig) SetDefaults() {
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime == "" {
		c.ConnMaxLifetime = "5m"
	}
}

// Validate checks a StoreConfig for errors.
func (c *StoreConfig) Validate() error {
	if c.ConnectionString == "" {
		return fmt.Errorf("missing connection_string")
	}
	return nil
}

// CacheConfig configures the Redis-backed KV cache (§4.1).
type CacheConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Address string `yaml:"address,omitempty"` // historically MEMCACHED_HOST
}

// SetDefaults applies default values to a CacheConfig.
func (c *CacheConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = "localhost:6379"
	}
}

// LockConfig configures the Redis-backed temporal lock (§4.12, §9).
type LockConfig struct {
	Address string `yaml:"address,omitempty"` // historically REDIS_HOST
}

// SetDefaults applies default values to a LockConfig.
func (c *LockConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = "localhost:6379"
	}
}

// MaintenanceConfig configures the periodic dirty-item and retention jobs
// (§4.12, §6 Retention).
type MaintenanceConfig struct {
	Interval                       string `yaml:"interval,omitempty"`
	RetentionInterval              string `yaml:"retention_interval,omitempty"`
	BatchSize                      int    `yaml:"batch_size,omitempty"`
	DeleteBatchSize                int    `yaml:"delete_batch_size,omitempty"`
	EventsCleanupAfter             string `yaml:"events_cleanup_after,omitempty"`
	SearchHistoryCleanupAfter      string `yaml:"search_history_cleanup_after,omitempty"`
	EventsCleanupLoneEventsAfter   string `yaml:"events_cleanup_lone_events_after,omitempty"`
	EventsCleanupLoneEventsMinimum int    `yaml:"events_cleanup_lone_events_min_count,omitempty"`
	EventsCleanupMaxPerPersonType  int    `yaml:"events_cleanup_max_per_person_and_type,omitempty"`
}

// SetDefaults applies default values to a MaintenanceConfig, mirroring the
// settings in original_source/app/app/settings.py.
func (c *MaintenanceConfig) SetDefaults() {
	if c.Interval == "" {
		c.Interval = "30s"
	}
	if c.RetentionInterval == "" {
		c.RetentionInterval = "1h"
	}
	if c.BatchSize == 0 {
		c.BatchSize = 500
	}
	if c.DeleteBatchSize == 0 {
		c.DeleteBatchSize = 100
	}
	if c.EventsCleanupAfter == "" {
		c.EventsCleanupAfter = "30d"
	}
	if c.SearchHistoryCleanupAfter == "" {
		c.SearchHistoryCleanupAfter = "3d"
	}
	if c.EventsCleanupLoneEventsAfter == "" {
		c.EventsCleanupLoneEventsAfter = "24h"
	}
	if c.EventsCleanupLoneEventsMinimum == 0 {
		c.EventsCleanupLoneEventsMinimum = 2
	}
	if c.EventsCleanupMaxPerPersonType == 0 {
		c.EventsCleanupMaxPerPersonType = 25
	}
}

// ServerConfig configures the HTTP surface (§6).
type ServerConfig struct {
	Address string `yaml:"address,omitempty"`
}

// SetDefaults applies default values to a ServerConfig.
func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
}

// LoggerConfig configures structured logging.
type LoggerConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// SetDefaults applies default values to a LoggerConfig.
func (c *LoggerConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "simple"
	}
}

// AggregationDefaultsConfig holds the fallback model names for the
// Aggregator's classification (light) and function-call (heavy) LLM steps.
type AggregationDefaultsConfig struct {
	HeavyModel string `yaml:"heavy_model,omitempty"`
	LightModel string `yaml:"light_model,omitempty"`
}

// SetDefaults applies default values to an AggregationDefaultsConfig.
func (c *AggregationDefaultsConfig) SetDefaults() {
	if c.HeavyModel == "" {
		c.HeavyModel = "openai:gpt-4o-mini"
	}
	if c.LightModel == "" {
		c.LightModel = "openai:gpt-4o-mini"
	}
}
