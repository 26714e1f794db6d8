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
	"fmt"
)

// EnsureItemsField creates the Items-Field row for name under collection if
// absent (lazy creation on first ingest sighting of that field name); a
// pre-existing row is left untouched. ordinal is only used on first
// creation, matching "created lazily when ingest first sees a name".
func (s *Store) EnsureItemsField(ctx context.Context, collectionID int64, name, label, fieldType string, ordinal int) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO items_fields (collection_id, name, label, field_type, ordinal)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (collection_id, name) DO NOTHING`,
		collectionID, name, label, fieldType, ordinal)
	if err != nil {
		return fmt.Errorf("ensure items_field: %w", err)
	}
	return nil
}

// ListItemsFields returns every Items-Field row for collection, ordered by
// ordinal.
func (s *Store) ListItemsFields(ctx context.Context, collectionID int64) ([]*ItemsField, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, collection_id, name, label, field_type, ordinal
FROM items_fields WHERE collection_id = $1 ORDER BY ordinal`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("list items_fields: %w", err)
	}
	defer rows.Close()

	var out []*ItemsField
	for rows.Next() {
		var f ItemsField
		if err := rows.Scan(&f.ID, &f.CollectionID, &f.Name, &f.Label, &f.Type, &f.Ordinal); err != nil {
			return nil, fmt.Errorf("scan items_field: %w", err)
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

// NextItemsFieldOrdinal returns the ordinal to use for the next
// lazily-created Items-Field of collection.
func (s *Store) NextItemsFieldOrdinal(ctx context.Context, collectionID int64) (int, error) {
	var max int
	err := s.db.QueryRowContext(ctx, `
SELECT COALESCE(MAX(ordinal), -1) FROM items_fields WHERE collection_id = $1`, collectionID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("next items_field ordinal: %w", err)
	}
	return max + 1, nil
}
