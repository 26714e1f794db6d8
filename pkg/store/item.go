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

// UpsertItem inserts or updates the Item identified by (collectionID,
// externalID). description_hash is a pure function of description (§3
// invariant); embeddings_dirty/index_dirty are set whenever the stored
// description_hash or fields disagree with the incoming values, and left
// alone otherwise — a no-op re-ingest of unchanged data does not re-dirty
// an already-clean item.
func (s *Store) UpsertItem(ctx context.Context, collectionID int64, externalID string, fields map[string]FieldValue, description, descriptionHash string) (*Item, error) {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal item fields: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
INSERT INTO items (collection_id, external_id, fields, description, description_hash, embeddings_dirty, index_dirty)
VALUES ($1, $2, $3, $4, $5, true, true)
ON CONFLICT (collection_id, external_id) DO UPDATE SET
    fields = EXCLUDED.fields,
    description = EXCLUDED.description,
    description_hash = EXCLUDED.description_hash,
    embeddings_dirty = items.embeddings_dirty OR items.description_hash IS DISTINCT FROM EXCLUDED.description_hash,
    index_dirty = items.index_dirty OR items.description_hash IS DISTINCT FROM EXCLUDED.description_hash
        OR items.fields IS DISTINCT FROM EXCLUDED.fields,
    updated_at = now()
RETURNING id, collection_id, external_id, fields, scores, description, description_hash,
    vector_384, vector_768, vector_1536, vector_3072, embeddings_dirty, index_dirty, created_at, updated_at`,
		collectionID, externalID, fieldsJSON, description, descriptionHash)

	return scanItem(row)
}

// GetItem looks up an Item by (collectionID, externalID).
func (s *Store) GetItem(ctx context.Context, collectionID int64, externalID string) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, collection_id, external_id, fields, scores, description, description_hash,
    vector_384, vector_768, vector_1536, vector_3072, embeddings_dirty, index_dirty, created_at, updated_at
FROM items WHERE collection_id = $1 AND external_id = $2`, collectionID, externalID)
	return scanItem(row)
}

// DeleteItem removes one Item by (collectionID, externalID).
func (s *Store) DeleteItem(ctx context.Context, collectionID int64, externalID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE collection_id = $1 AND external_id = $2`, collectionID, externalID)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// ListItems returns every Item in collection, in insertion order.
func (s *Store) ListItems(ctx context.Context, collectionID int64) ([]*Item, error) {
	return s.queryItems(ctx, `
SELECT id, collection_id, external_id, fields, scores, description, description_hash,
    vector_384, vector_768, vector_1536, vector_3072, embeddings_dirty, index_dirty, created_at, updated_at
FROM items WHERE collection_id = $1 ORDER BY id`, collectionID)
}

// ListDirtyEmbeddings returns up to limit Items in collection whose vector
// needs (re)computing.
func (s *Store) ListDirtyEmbeddings(ctx context.Context, collectionID int64, limit int) ([]*Item, error) {
	return s.queryItems(ctx, `
SELECT id, collection_id, external_id, fields, scores, description, description_hash,
    vector_384, vector_768, vector_1536, vector_3072, embeddings_dirty, index_dirty, created_at, updated_at
FROM items WHERE collection_id = $1 AND embeddings_dirty ORDER BY id LIMIT $2`, collectionID, limit)
}

// ListDirtyIndex returns up to limit Items in collection whose index entry
// needs (re)building.
func (s *Store) ListDirtyIndex(ctx context.Context, collectionID int64, limit int) ([]*Item, error) {
	return s.queryItems(ctx, `
SELECT id, collection_id, external_id, fields, scores, description, description_hash,
    vector_384, vector_768, vector_1536, vector_3072, embeddings_dirty, index_dirty, created_at, updated_at
FROM items WHERE collection_id = $1 AND index_dirty ORDER BY id LIMIT $2`, collectionID, limit)
}

// SetItemVector stores the item's embedding and clears embeddings_dirty.
// dim must be one of the supported dimensions; the vector is written to the
// matching vector_<dim> column and every other vector column is cleared.
func (s *Store) SetItemVector(ctx context.Context, itemID int64, vector []float32) error {
	col := vectorColumn(len(vector))
	if col == "" {
		return fmt.Errorf("unsupported vector dimension %d", len(vector))
	}

	setClauses := ""
	for _, d := range supportedDimensions {
		c := vectorColumn(d)
		if c == col {
			setClauses += c + " = $2, "
		} else {
			setClauses += c + " = NULL, "
		}
	}

	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
UPDATE items SET %s embeddings_dirty = false, updated_at = now() WHERE id = $1`, setClauses),
		itemID, encodeVector(vector))
	if err != nil {
		return fmt.Errorf("set item vector: %w", err)
	}
	return nil
}

// MarkEmbeddingsDirty force-dirties an Item's embedding regardless of
// whether its description changed, for a caller-requested recompute.
func (s *Store) MarkEmbeddingsDirty(ctx context.Context, collectionID int64, externalID string) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE items SET embeddings_dirty = true, index_dirty = true
WHERE collection_id = $1 AND external_id = $2`, collectionID, externalID)
	if err != nil {
		return fmt.Errorf("mark embeddings dirty: %w", err)
	}
	return nil
}

// ClearIndexDirty marks an Item as successfully (re)indexed.
func (s *Store) ClearIndexDirty(ctx context.Context, itemID int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE items SET index_dirty = false WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("clear index_dirty: %w", err)
	}
	return nil
}

// SetItemScores replaces an Item's score map (e.g. computed by the
// Aggregator/Ranker).
func (s *Store) SetItemScores(ctx context.Context, itemID int64, scores map[string]float64) error {
	scoresJSON, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("marshal item scores: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `UPDATE items SET scores = $2 WHERE id = $1`, itemID, scoresJSON)
	if err != nil {
		return fmt.Errorf("set item scores: %w", err)
	}
	return nil
}

func (s *Store) queryItems(ctx context.Context, query string, args ...any) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var out []*Item
	for rows.Next() {
		item, err := scanItemRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	return scanItemRow(row)
}

func scanItemRow(row rowScanner) (*Item, error) {
	var (
		item                      Item
		fieldsJSON, scoresJSON    []byte
		v384, v768, v1536, v3072  []byte
	)
	err := row.Scan(&item.ID, &item.CollectionID, &item.ExternalID, &fieldsJSON, &scoresJSON,
		&item.Description, &item.DescriptionHash,
		&v384, &v768, &v1536, &v3072,
		&item.EmbeddingsDirty, &item.IndexDirty, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}

	if err := json.Unmarshal(fieldsJSON, &item.Fields); err != nil {
		return nil, fmt.Errorf("unmarshal item fields: %w", err)
	}
	if err := json.Unmarshal(scoresJSON, &item.Scores); err != nil {
		return nil, fmt.Errorf("unmarshal item scores: %w", err)
	}

	for _, raw := range [][]byte{v384, v768, v1536, v3072} {
		if len(raw) > 0 {
			item.Vector = decodeVector(raw)
			break
		}
	}

	return &item, nil
}
