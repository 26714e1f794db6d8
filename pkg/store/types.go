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

package store

import "time"

// Organization is a tenant. It exclusively owns its Collections.
type Organization struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Collection is a named index unit scoped to an Organization.
type Collection struct {
	ID              int64
	OrganizationID  int64
	Name            string
	Indexer         string
	EmbeddingsModel string
	Dimension       int
	Stemmers        []string
	CreatedAt       time.Time
}

// FieldValue is any of the scalar/nested shapes an Item or Person field map
// may hold: string, number, bool, nil, []any (list of scalars), or
// map[string]any (nested map).
type FieldValue = any

// Item is the indexed unit.
type Item struct {
	ID              int64
	CollectionID    int64
	ExternalID      string
	Fields          map[string]FieldValue
	Scores          map[string]float64
	Description     string
	DescriptionHash string
	Vector          []float32
	EmbeddingsDirty bool
	IndexDirty      bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ItemsField is per-collection schema metadata describing one field name
// seen across that collection's items.
type ItemsField struct {
	ID           int64
	CollectionID int64
	Name         string
	Label        string
	Type         string // "string" | "number" | "boolean"
	Ordinal      int
}

// Person is a subject that emits Events.
type Person struct {
	ID           int64
	CollectionID int64
	ExternalID   string
	Fields       map[string]FieldValue
	CreatedAt    time.Time
}

// Event is an append-only record of a Person interacting with an Item.
type Event struct {
	ID               int64
	CollectionID     int64
	Type             string
	PersonExternalID string
	ItemExternalID   string
	Weight           float64
	SearchHistoryID  *int64
	CreatedAt        time.Time
}

// SearchHistoryEntry records one search request/response for later
// attribution (Events reference it) and retention-based pruning.
type SearchHistoryEntry struct {
	ID               int64
	CollectionID     int64
	PersonExternalID string
	ItemExternalIDs  []string
	RequestConfig    map[string]any
	CreatedAt        time.Time
}
