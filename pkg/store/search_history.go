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

// AppendSearchHistory records one search request/response, appended on
// every search.
func (s *Store) AppendSearchHistory(ctx context.Context, collectionID int64, personExternalID string, itemExternalIDs []string, requestConfig map[string]any) (*SearchHistoryEntry, error) {
	itemsJSON, err := json.Marshal(itemExternalIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal search history item ids: %w", err)
	}
	configJSON, err := json.Marshal(requestConfig)
	if err != nil {
		return nil, fmt.Errorf("marshal search history request config: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
INSERT INTO search_history (collection_id, person_external_id, item_external_ids, request_config)
VALUES ($1, $2, $3, $4)
RETURNING id, collection_id, person_external_id, item_external_ids, request_config, created_at`,
		collectionID, personExternalID, itemsJSON, configJSON)

	return scanSearchHistory(row)
}

// GetSearchHistory looks up one Search-History entry by id — used to
// resolve an Event's back-reference.
func (s *Store) GetSearchHistory(ctx context.Context, id int64) (*SearchHistoryEntry, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, collection_id, person_external_id, item_external_ids, request_config, created_at
FROM search_history WHERE id = $1`, id)
	return scanSearchHistory(row)
}

// PruneSearchHistoryOlderThan deletes Search-History rows older than
// cutoff (age-based retention) and returns the number of rows removed.
func (s *Store) PruneSearchHistoryOlderThan(ctx context.Context, collectionID int64, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
DELETE FROM search_history WHERE collection_id = $1 AND created_at < $2`, collectionID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune search history: %w", err)
	}
	return res.RowsAffected()
}

func scanSearchHistory(row *sql.Row) (*SearchHistoryEntry, error) {
	var h SearchHistoryEntry
	var itemsJSON, configJSON []byte
	if err := row.Scan(&h.ID, &h.CollectionID, &h.PersonExternalID, &itemsJSON, &configJSON, &h.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan search history: %w", err)
	}
	if err := json.Unmarshal(itemsJSON, &h.ItemExternalIDs); err != nil {
		return nil, fmt.Errorf("unmarshal search history item ids: %w", err)
	}
	if err := json.Unmarshal(configJSON, &h.RequestConfig); err != nil {
		return nil, fmt.Errorf("unmarshal search history request config: %w", err)
	}
	return &h, nil
}
