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
	"time"
)

// GetOrCreateCollection returns the named Collection under org, creating it
// with the given configuration on first reference.
func (s *Store) GetOrCreateCollection(ctx context.Context, orgID int64, name, indexer, embeddingsModel string, dimension int, stemmers []string) (*Collection, error) {
	c, err := s.GetCollectionByName(ctx, orgID, name)
	if err == nil {
		return c, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	stemmersJSON, err := json.Marshal(stemmers)
	if err != nil {
		return nil, fmt.Errorf("marshal stemmers: %w", err)
	}

	var row collectionRow
	r := s.db.QueryRowContext(ctx, `
INSERT INTO collections (organization_id, name, indexer, embeddings_model, dimension, stemmers)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (organization_id, name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, organization_id, name, indexer, embeddings_model, dimension, stemmers, created_at`,
		orgID, name, indexer, embeddingsModel, dimension, stemmersJSON)
	if err := scanCollectionRow(r, &row); err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return row.toCollection()
}

// GetCollectionByName looks up a Collection by (organization, name).
func (s *Store) GetCollectionByName(ctx context.Context, orgID int64, name string) (*Collection, error) {
	var row collectionRow
	r := s.db.QueryRowContext(ctx, `
SELECT id, organization_id, name, indexer, embeddings_model, dimension, stemmers, created_at
FROM collections WHERE organization_id = $1 AND name = $2`, orgID, name)
	if err := scanCollectionRow(r, &row); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return row.toCollection()
}

// GetCollection looks up a Collection by id.
func (s *Store) GetCollection(ctx context.Context, id int64) (*Collection, error) {
	var row collectionRow
	r := s.db.QueryRowContext(ctx, `
SELECT id, organization_id, name, indexer, embeddings_model, dimension, stemmers, created_at
FROM collections WHERE id = $1`, id)
	if err := scanCollectionRow(r, &row); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return row.toCollection()
}

// DeleteCollection removes a Collection and, via ON DELETE CASCADE, every
// Item/Person/Event/ItemsField/SearchHistory row that references it — no
// dangling rows remain.
func (s *Store) DeleteCollection(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}

type collectionRow struct {
	id, orgID       int64
	name            string
	indexer         string
	embeddingsModel string
	dimension       int
	stemmersJSON    []byte
	createdAt       time.Time
}

func scanCollectionRow(r *sql.Row, row *collectionRow) error {
	return r.Scan(&row.id, &row.orgID, &row.name, &row.indexer, &row.embeddingsModel,
		&row.dimension, &row.stemmersJSON, &row.createdAt)
}

func (row *collectionRow) toCollection() (*Collection, error) {
	var stemmers []string
	if err := json.Unmarshal(row.stemmersJSON, &stemmers); err != nil {
		return nil, fmt.Errorf("unmarshal stemmers: %w", err)
	}
	return &Collection{
		ID:              row.id,
		OrganizationID:  row.orgID,
		Name:            row.name,
		Indexer:         row.indexer,
		EmbeddingsModel: row.embeddingsModel,
		Dimension:       row.dimension,
		Stemmers:        stemmers,
		CreatedAt:       row.createdAt,
	}, nil
}
