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
	"github.com/kadirpekel/semhub/pkg/aggregate"
	"github.com/kadirpekel/semhub/pkg/config"
	"github.com/kadirpekel/semhub/pkg/ingest"
	"github.com/kadirpekel/semhub/pkg/search"
	"github.com/kadirpekel/semhub/pkg/similarity"
	"github.com/kadirpekel/semhub/pkg/suggest"
)

// maxBatchSize is the §6 "422 if >1e6 items/events" ceiling shared by
// POST /api/items and POST /api/events.
const maxBatchSize = 1_000_000

// messageResponse is the `{message}` response shape every write endpoint
// (items, events, collections) shares.
type messageResponse struct {
	Message string `json:"message"`
}

type itemsRequest struct {
	Collection         string              `json:"collection"`
	Items              []ingest.SimpleItem `json:"items"`
	RecalculateVectors bool                `json:"recalculate_vectors,omitempty"`
	Model              string              `json:"model,omitempty"`
	Sync               bool                `json:"sync,omitempty"`
}

type deleteItemsRequest struct {
	Collection string   `json:"collection"`
	IDs        []string `json:"ids"`
	Sync       bool     `json:"sync,omitempty"`
}

type eventsRequest struct {
	Collection string               `json:"collection"`
	Events     []ingest.SimpleEvent `json:"events"`
}

type deleteEventsRequest struct {
	Collection string `json:"collection"`
}

type collectionsRequest struct {
	Collection string                  `json:"collection"`
	Config     config.CollectionConfig `json:"config"`
}

type deleteCollectionRequest struct {
	Collection string `json:"collection"`
}

// searchRequest carries, alongside the §6 `{collection, config}` shape,
// the person/context the core's Searcher/Query Parser need for
// recommendation clauses and `$var` substitution — present in every
// internal call signature (pkg/search.Searcher.Search) but left out of
// the endpoint table's abbreviated body description.
type searchRequest struct {
	Collection string         `json:"collection"`
	Config     search.Config  `json:"config"`
	Person     string         `json:"person,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

type searchResponse struct {
	Items  []similarity.SearchItem `json:"items"`
	ID     int64                   `json:"id"`
	TookMs int64                   `json:"took_ms"`
}

type aggregateRequest struct {
	Collection string           `json:"collection"`
	Config     aggregate.Config `json:"config"`
}

type aggregateResponse struct {
	Aggregations []aggregate.Result `json:"aggregations"`
	TookMs       int64              `json:"took_ms"`
}

// suggestRequest adds the Collection field the §6 table's `{config}` body
// omits: the Suggestor's three sources all route through one collection's
// Searcher/Aggregator, so something has to name it.
type suggestRequest struct {
	Collection string         `json:"collection"`
	Config     suggest.Config `json:"config"`
	Context    map[string]any `json:"context,omitempty"`
}

type suggestResponse struct {
	Suggestions []map[string]any `json:"suggestions"`
	TookMs      int64            `json:"took_ms"`
}

type autocompleteRequest struct {
	Collection string                     `json:"collection"`
	Config     suggest.AutocompleteConfig `json:"config"`
	Context    map[string]any             `json:"context,omitempty"`
}

type autocompleteResponse struct {
	Suggestions []map[string]any `json:"suggestions"`
	TookMs      int64            `json:"took_ms"`
}
