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
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter builds the §6 HTTP surface over app: one route per endpoint,
// grouped under /api, plus a liveness check outside the group.
func NewRouter(app *App) *chi.Mux {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/api/health", app.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/items", app.handleUpsertItems)
		r.Delete("/items", app.handleDeleteItems)
		r.Post("/events", app.handleRecordEvents)
		r.Delete("/events", app.handleDeleteEvents)
		r.Put("/collections", app.handleConfigureCollection)
		r.Delete("/collections", app.handleDeleteCollection)
		r.Post("/search", app.handleSearch)
		r.Post("/aggregate", app.handleAggregate)
		r.Post("/suggest", app.handleSuggest)
		r.Post("/autocomplete", app.handleAutocomplete)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})

	return r
}
