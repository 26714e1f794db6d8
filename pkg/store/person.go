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

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// UpsertPerson creates or updates a Person, implicitly upserted by ingest
// of Events (§3: "upserted implicitly by ingest of Events").
func (s *Store) UpsertPerson(ctx context.Context, collectionID int64, externalID string, fields map[string]FieldValue) (*Person, error) {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal person fields: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
INSERT INTO persons (collection_id, external_id, fields)
VALUES ($1, $2, $3)
ON CONFLICT (collection_id, external_id) DO UPDATE SET fields = EXCLUDED.fields
RETURNING id, collection_id, external_id, fields, created_at`,
		collectionID, externalID, fieldsJSON)

	var p Person
	var raw []byte
	if err := row.Scan(&p.ID, &p.CollectionID, &p.ExternalID, &raw, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("upsert person: %w", err)
	}
	if err := json.Unmarshal(raw, &p.Fields); err != nil {
		return nil, fmt.Errorf("unmarshal person fields: %w", err)
	}
	return &p, nil
}

// GetPerson looks up a Person by (collectionID, externalID).
func (s *Store) GetPerson(ctx context.Context, collectionID int64, externalID string) (*Person, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, collection_id, external_id, fields, created_at
FROM persons WHERE collection_id = $1 AND external_id = $2`, collectionID, externalID)

	var p Person
	var raw []byte
	err := row.Scan(&p.ID, &p.CollectionID, &p.ExternalID, &raw, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get person: %w", err)
	}
	if err := json.Unmarshal(raw, &p.Fields); err != nil {
		return nil, fmt.Errorf("unmarshal person fields: %w", err)
	}
	return &p, nil
}
