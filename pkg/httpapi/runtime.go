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

// Package httpapi implements the §6 HTTP surface: one go-chi/chi/v5 router
// over the core's per-collection facades (Searcher, Aggregator, Suggestor,
// Ingest Pipeline), plus the lazy collection-runtime wiring each facade is
// built from.
package httpapi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kadirpekel/semhub/pkg/aggregate"
	"github.com/kadirpekel/semhub/pkg/apperror"
	"github.com/kadirpekel/semhub/pkg/cache"
	"github.com/kadirpekel/semhub/pkg/config"
	"github.com/kadirpekel/semhub/pkg/embedders"
	"github.com/kadirpekel/semhub/pkg/indexer"
	"github.com/kadirpekel/semhub/pkg/ingest"
	"github.com/kadirpekel/semhub/pkg/llms"
	"github.com/kadirpekel/semhub/pkg/lock"
	"github.com/kadirpekel/semhub/pkg/query"
	"github.com/kadirpekel/semhub/pkg/search"
	"github.com/kadirpekel/semhub/pkg/similarity"
	"github.com/kadirpekel/semhub/pkg/store"
	"github.com/kadirpekel/semhub/pkg/suggest"
)

// App wires the request layer to the core: the two provider registries
// (pre-populated at startup from config.Config.LLMs/Embedders, per the
// registry idiom), the shared Store/Cache/Lock, and a lazily-built,
// name-keyed cache of per-collection runtimes.
type App struct {
	Config    *config.Config
	Store     *store.Store
	Cache     cache.Cache
	Lock      *lock.TemporalLock
	LLMs      *llms.Registry
	Embedders *embedders.Registry

	mu          sync.RWMutex
	collections map[string]*collectionRuntime
}

// NewApp builds an App. cfg, st, ch, lk, llmReg and embReg must already be
// initialized; embReg/llmReg are expected to already hold every entry of
// cfg.Embedders/cfg.LLMs, registered under their config-file names.
func NewApp(cfg *config.Config, st *store.Store, ch cache.Cache, lk *lock.TemporalLock, llmReg *llms.Registry, embReg *embedders.Registry) *App {
	return &App{
		Config:      cfg,
		Store:       st,
		Cache:       ch,
		Lock:        lk,
		LLMs:        llmReg,
		Embedders:   embReg,
		collections: make(map[string]*collectionRuntime),
	}
}

// collectionRuntime is everything one collection's request handlers need,
// assembled once per collection name and reused across requests: the
// Indexer → Similarity Engine → Searcher → Aggregator/Suggestor chain plus
// the Ingest Pipeline and Maintenance runner, mirroring the wiring order
// the core's own package docs describe (Indexer, then Similarity Engine,
// then Searcher, then Aggregator/Suggestor).
type collectionRuntime struct {
	Collection  *store.Collection
	Indexer     indexer.Indexer
	Searcher    *search.Searcher
	Aggregator  *aggregate.Aggregator
	Suggestor   *suggest.Suggestor
	Pipeline    *ingest.Pipeline
	Maintenance *ingest.Maintenance

	defaultHeavyLLM llms.Provider
	defaultLightLLM llms.Provider
}

// resolveCollection returns the cached runtime for name, building and
// caching it on first reference — mirroring §3's Collection lifecycle
// ("created on first reference"). A name absent from config.Collections
// gets the organization-wide defaults (sql indexer, no embedder, no
// stemmers), same as an explicit `indexer: sql` entry with nothing else
// set.
func (a *App) resolveCollection(ctx context.Context, name string) (*collectionRuntime, error) {
	a.mu.RLock()
	rt, ok := a.collections[name]
	a.mu.RUnlock()
	if ok {
		return rt, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if rt, ok := a.collections[name]; ok {
		return rt, nil
	}

	rt, err := a.buildCollectionRuntime(ctx, name)
	if err != nil {
		return nil, err
	}
	a.collections[name] = rt
	return rt, nil
}

// invalidateCollection drops a cached runtime so the next reference
// rebuilds it from the (possibly just-changed) config — used by the
// collection configure/delete handlers.
func (a *App) invalidateCollection(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.collections, name)
}

// setCollectionConfig seats cfg as name's config and drops any cached
// runtime built under the old one, so the next reference rebuilds fresh.
func (a *App) setCollectionConfig(name string, cfg *config.CollectionConfig) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Config.Collections == nil {
		a.Config.Collections = make(map[string]*config.CollectionConfig)
	}
	a.Config.Collections[name] = cfg
	delete(a.collections, name)
}

func (a *App) buildCollectionRuntime(ctx context.Context, name string) (*collectionRuntime, error) {
	cfgEntry, ok := a.Config.Collections[name]
	if !ok {
		cfgEntry = &config.CollectionConfig{Organization: a.Config.Organization}
		cfgEntry.SetDefaults()
	}

	orgName := cfgEntry.Organization
	if orgName == "" {
		orgName = a.Config.Organization
	}
	org, err := a.Store.GetOrCreateOrganization(ctx, orgName)
	if err != nil {
		return nil, &apperror.StoreError{Operation: "get or create organization", Err: err}
	}

	dimension := 0
	var embedder embedders.Provider
	if cfgEntry.EmbeddingsModel != "" {
		embedder, ok = a.Embedders.Get(cfgEntry.EmbeddingsModel)
		if !ok {
			return nil, &apperror.ConfigError{Message: fmt.Sprintf("collection %q references undefined embedder %q", name, cfgEntry.EmbeddingsModel)}
		}
		dimension = embedder.GetDimension()
	}

	coll, err := a.Store.GetOrCreateCollection(ctx, org.ID, name, cfgEntry.Indexer, cfgEntry.EmbeddingsModel, dimension, cfgEntry.Stemmers)
	if err != nil {
		return nil, &apperror.StoreError{Operation: "get or create collection", Err: err}
	}

	idx, err := a.buildIndexer(coll)
	if err != nil {
		return nil, err
	}

	defaultHeavyLLM, _ := a.LLMs.Get(firstNonEmpty(cfgEntry.DefaultHeavyLLM, a.Config.Aggregation.HeavyModel))
	defaultLightLLM, _ := a.LLMs.Get(firstNonEmpty(cfgEntry.DefaultLightLLM, a.Config.Aggregation.LightModel))

	engine := &similarity.Engine{Indexer: idx, Store: a.Store, CollectionID: coll.ID}
	searcher := &search.Searcher{
		Engine:       engine,
		Store:        a.Store,
		Cache:        a.Cache,
		CollectionID: coll.ID,
		QueryDeps: query.Deps{
			Store:        a.Store,
			CollectionID: coll.ID,
			Dimension:    coll.Dimension,
			Stemmers:     coll.Stemmers,
			Embedder:     embedder,
			LightLLM:     defaultLightLLM,
		},
	}
	aggregator := &aggregate.Aggregator{Searcher: searcher}
	autocompletor := &suggest.Autocompletor{Searcher: searcher}
	suggestor := &suggest.Suggestor{Autocompletor: autocompletor, Searcher: searcher, Aggregator: aggregator}

	pipeline := &ingest.Pipeline{
		Store:        a.Store,
		CollectionID: coll.ID,
		LightLLM:     defaultLightLLM,
		Cache:        a.Cache,
		CacheTTL:     24 * time.Hour,
	}

	lockTTL, err := config.ParseDuration(a.Config.Maintenance.Interval)
	if err != nil {
		lockTTL = 30 * time.Second
	}
	maintenance := &ingest.Maintenance{
		Store:        a.Store,
		CollectionID: coll.ID,
		Embedder:     embedder,
		Indexer:      idx,
		Lock:         a.Lock,
		BatchSize:    a.Config.Maintenance.BatchSize,
		LockTTL:      lockTTL,
	}

	return &collectionRuntime{
		Collection:      coll,
		Indexer:         idx,
		Searcher:        searcher,
		Aggregator:      aggregator,
		Suggestor:       suggestor,
		Pipeline:        pipeline,
		Maintenance:     maintenance,
		defaultHeavyLLM: defaultHeavyLLM,
		defaultLightLLM: defaultLightLLM,
	}, nil
}

// BuildIndexerForScheduling exposes buildIndexer to cmd/semhubd, which needs
// one Indexer per configured collection to construct the Maintenance jobs
// it schedules at startup, outside of any request's lazy collection-runtime
// build.
func (a *App) BuildIndexerForScheduling(coll *store.Collection) (indexer.Indexer, error) {
	return a.buildIndexer(coll)
}

func (a *App) buildIndexer(coll *store.Collection) (indexer.Indexer, error) {
	switch coll.Indexer {
	case "qdrant":
		if a.Config.Qdrant == nil {
			return nil, &apperror.ConfigError{Message: fmt.Sprintf("collection %q uses indexer \"qdrant\" but no qdrant config is set", coll.Name)}
		}
		idx, err := indexer.NewQdrantIndexer(*a.Config.Qdrant, a.Store, coll.ID, coll.Dimension)
		if err != nil {
			return nil, &apperror.ConfigError{Message: "connect to qdrant", Err: err}
		}
		return idx, nil
	case "sql", "":
		return indexer.NewSQLIndexer(a.Store, coll.ID, coll.Dimension), nil
	default:
		return nil, &apperror.ConfigError{Message: fmt.Sprintf("collection %q has unknown indexer %q", coll.Name, coll.Indexer)}
	}
}

// resolveLLM looks up the named provider for a request-supplied model
// name, falling back to the collection's configured default when name is
// empty. An empty name with no configured default resolves to a nil
// Provider — callers that require one must check.
func resolveLLM(reg *llms.Registry, name string, fallback llms.Provider) (llms.Provider, error) {
	if name == "" {
		return fallback, nil
	}
	provider, ok := reg.Get(name)
	if !ok {
		return nil, &apperror.ConfigError{Message: fmt.Sprintf("unknown llm provider %q", name)}
	}
	return provider, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
