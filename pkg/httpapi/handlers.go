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

package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kadirpekel/semhub/pkg/apperror"
	"github.com/kadirpekel/semhub/pkg/store"
)

// handleHealth answers GET /api/health with a static ok body — liveness
// only, no dependency probing (the collection runtimes are built lazily,
// so there's no fixed set of dependencies to probe at this layer).
func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "ok"})
}

// handleUpsertItems implements POST /api/items (§6): resolve the
// collection, enforce the batch ceiling, run the upsert, then — when
// req.Sync is set — run maintenance in-request so a test/CLI caller sees
// embeddings and index membership settle before the response returns.
func (a *App) handleUpsertItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req itemsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.Items) > maxBatchSize {
		writeError(w, r, &apperror.ValidationError{Fields: map[string]string{"items": fmt.Sprintf("batch of %d exceeds the %d item limit", len(req.Items), maxBatchSize)}})
		return
	}

	rt, err := a.resolveCollection(ctx, req.Collection)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if req.Model != "" {
		if _, err := resolveLLM(a.LLMs, req.Model, rt.defaultLightLLM); err != nil {
			writeError(w, r, err)
			return
		}
	}

	if err := rt.Pipeline.Upsert(ctx, req.Items); err != nil {
		writeError(w, r, err)
		return
	}

	if req.RecalculateVectors {
		externalIDs := make([]string, len(req.Items))
		for i, item := range req.Items {
			externalIDs[i] = item.ExternalID
		}
		if err := rt.Pipeline.MarkRecalculate(ctx, externalIDs); err != nil {
			writeError(w, r, err)
			return
		}
	}

	if req.Sync {
		if _, err := rt.Maintenance.Run(ctx); err != nil {
			writeError(w, r, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "items upserted"})
}

// handleDeleteItems implements DELETE /api/items. A sync delete also
// reconciles the index (§4.12's Cleanup) so a deleted item's document
// stops surfacing in search immediately rather than at the next
// scheduled maintenance pass.
func (a *App) handleDeleteItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req deleteItemsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rt, err := a.resolveCollection(ctx, req.Collection)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := rt.Pipeline.Delete(ctx, req.IDs); err != nil {
		writeError(w, r, err)
		return
	}

	if req.Sync {
		if err := rt.Indexer.Cleanup(ctx); err != nil {
			writeError(w, r, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "items deleted"})
}

// handleRecordEvents implements POST /api/events.
func (a *App) handleRecordEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req eventsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.Events) > maxBatchSize {
		writeError(w, r, &apperror.ValidationError{Fields: map[string]string{"events": fmt.Sprintf("batch of %d exceeds the %d event limit", len(req.Events), maxBatchSize)}})
		return
	}

	rt, err := a.resolveCollection(ctx, req.Collection)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := rt.Pipeline.RecordEvents(ctx, req.Events); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "events recorded"})
}

// handleDeleteEvents implements DELETE /api/events: §6's bulk clear,
// wiping every event in the named collection.
func (a *App) handleDeleteEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req deleteEventsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rt, err := a.resolveCollection(ctx, req.Collection)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := a.Store.DeleteAllEvents(ctx, rt.Collection.ID); err != nil {
		writeError(w, r, &apperror.StoreError{Operation: "delete all events", Err: err})
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "events deleted"})
}

// handleConfigureCollection implements PUT /api/collections: (re)seats the
// collection's config. Since collections are normally created lazily on
// first reference, this endpoint's job is to make an explicit config
// stick before anything references the collection implicitly — so it
// writes into a.Config.Collections and invalidates any already-built
// runtime before rebuilding one under the new config.
func (a *App) handleConfigureCollection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req collectionsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Collection == "" {
		writeError(w, r, &apperror.ValidationError{Fields: map[string]string{"collection": "collection name is required"}})
		return
	}

	cfg := req.Config
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		writeError(w, r, &apperror.ValidationError{Fields: map[string]string{"config": err.Error()}})
		return
	}

	a.setCollectionConfig(req.Collection, &cfg)

	if _, err := a.resolveCollection(ctx, req.Collection); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "collection configured"})
}

// handleDeleteCollection implements DELETE /api/collections: idempotent
// per §4's "delete is a no-op on an already-absent collection" posture —
// a missing organization or collection is success, not an error.
func (a *App) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req deleteCollectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	a.invalidateCollection(req.Collection)

	org, err := a.Store.GetOrganizationByName(ctx, a.Config.Organization)
	if err != nil {
		if err == store.ErrNotFound {
			writeJSON(w, http.StatusOK, messageResponse{Message: "collection deleted"})
			return
		}
		writeError(w, r, &apperror.StoreError{Operation: "get organization", Err: err})
		return
	}

	coll, err := a.Store.GetCollectionByName(ctx, org.ID, req.Collection)
	if err != nil {
		if err == store.ErrNotFound {
			writeJSON(w, http.StatusOK, messageResponse{Message: "collection deleted"})
			return
		}
		writeError(w, r, &apperror.StoreError{Operation: "get collection", Err: err})
		return
	}

	if err := a.Store.DeleteCollection(ctx, coll.ID); err != nil {
		writeError(w, r, &apperror.StoreError{Operation: "delete collection", Err: err})
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "collection deleted"})
}

// handleSearch implements POST /api/search (§4.9).
func (a *App) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rt, err := a.resolveCollection(ctx, req.Collection)
	if err != nil {
		writeError(w, r, err)
		return
	}

	start := time.Now()
	items, historyID, err := rt.Searcher.Search(ctx, req.Config, req.Person, req.Context)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Items: items, ID: historyID, TookMs: time.Since(start).Milliseconds()})
}

// handleAggregate implements POST /api/aggregate (§4.10). HeavyModel and
// LightModel, when given, name a provider registered at startup; an
// unregistered name is a 422, matching the rest of the request's
// validation-before-work posture.
func (a *App) handleAggregate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req aggregateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rt, err := a.resolveCollection(ctx, req.Collection)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cfg := req.Config
	if cfg.HeavyLLM, err = resolveLLM(a.LLMs, cfg.HeavyModel, rt.defaultHeavyLLM); err != nil {
		writeError(w, r, err)
		return
	}
	if cfg.LightLLM, err = resolveLLM(a.LLMs, cfg.LightModel, rt.defaultLightLLM); err != nil {
		writeError(w, r, err)
		return
	}

	start := time.Now()
	results, err := rt.Aggregator.Aggregate(ctx, cfg)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, aggregateResponse{Aggregations: results, TookMs: time.Since(start).Milliseconds()})
}

// handleSuggest implements POST /api/suggest (§4.11's blended sources).
func (a *App) handleSuggest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req suggestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rt, err := a.resolveCollection(ctx, req.Collection)
	if err != nil {
		writeError(w, r, err)
		return
	}

	start := time.Now()
	suggestions, err := rt.Suggestor.Suggest(ctx, req.Config, req.Context)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, suggestResponse{Suggestions: suggestions, TookMs: time.Since(start).Milliseconds()})
}

// handleAutocomplete implements POST /api/autocomplete (§4.11's
// LLM-continuation source run standalone).
func (a *App) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req autocompleteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rt, err := a.resolveCollection(ctx, req.Collection)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cfg := req.Config
	provider, err := resolveLLM(a.LLMs, cfg.Model, rt.defaultLightLLM)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cfg.Provider = provider

	start := time.Now()
	suggestions, err := rt.Suggestor.Autocompletor.Suggest(ctx, cfg, req.Context)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, autocompleteResponse{Suggestions: suggestions, TookMs: time.Since(start).Milliseconds()})
}
