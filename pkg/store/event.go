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
	"time"
)

// AppendEvent records one append-only Event. historyID is nil when the
// event was not produced by a search result.
func (s *Store) AppendEvent(ctx context.Context, collectionID int64, eventType, personExternalID, itemExternalID string, weight float64, historyID *int64) (*Event, error) {
	row := s.db.QueryRowContext(ctx, `
INSERT INTO events (collection_id, event_type, person_external_id, item_external_id, weight, search_history_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, collection_id, event_type, person_external_id, item_external_id, weight, search_history_id, created_at`,
		collectionID, eventType, personExternalID, itemExternalID, weight, historyID)

	var e Event
	if err := row.Scan(&e.ID, &e.CollectionID, &e.Type, &e.PersonExternalID, &e.ItemExternalID,
		&e.Weight, &e.SearchHistoryID, &e.CreatedAt); err != nil {
		return nil, fmt.Errorf("append event: %w", err)
	}
	return &e, nil
}

// DeleteAllEvents removes every Event for collection — backs
// `DELETE /api/events`, which clears interaction history for a collection
// without deleting the collection itself.
func (s *Store) DeleteAllEvents(ctx context.Context, collectionID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE collection_id = $1`, collectionID)
	if err != nil {
		return fmt.Errorf("delete all events: %w", err)
	}
	return nil
}

// ListEventsByPerson returns every Event for personExternalID in collection,
// newest first.
func (s *Store) ListEventsByPerson(ctx context.Context, collectionID int64, personExternalID string) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, collection_id, event_type, person_external_id, item_external_id, weight, search_history_id, created_at
FROM events WHERE collection_id = $1 AND person_external_id = $2 ORDER BY created_at DESC`,
		collectionID, personExternalID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []*Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.CollectionID, &e.Type, &e.PersonExternalID, &e.ItemExternalID,
			&e.Weight, &e.SearchHistoryID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// PruneEventsOlderThan deletes every Event in collection older than cutoff
// (max-age retention policy) and returns the number of rows removed.
func (s *Store) PruneEventsOlderThan(ctx context.Context, collectionID int64, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
DELETE FROM events WHERE collection_id = $1 AND created_at < $2`, collectionID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune events by age: %w", err)
	}
	return res.RowsAffected()
}

// PruneExcessEventsPerPersonType enforces the max-per-(person,type)
// retention policy: for every (person, event_type) pair in collection with
// more than maxPerPersonType events, the oldest excess rows are deleted.
func (s *Store) PruneExcessEventsPerPersonType(ctx context.Context, collectionID int64, maxPerPersonType int) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
DELETE FROM events e USING (
    SELECT id FROM (
        SELECT id, ROW_NUMBER() OVER (
            PARTITION BY person_external_id, event_type
            ORDER BY created_at DESC
        ) AS rn
        FROM events WHERE collection_id = $1
    ) ranked WHERE ranked.rn > $2
) excess
WHERE e.id = excess.id`, collectionID, maxPerPersonType)
	if err != nil {
		return 0, fmt.Errorf("prune excess events per person/type: %w", err)
	}
	return res.RowsAffected()
}

// PruneLoneEvents deletes Events belonging to persons whose total event
// count in collection is below minCount and whose most recent event is
// older than olderThan — a person who interacted once, long ago, and never
// came back.
func (s *Store) PruneLoneEvents(ctx context.Context, collectionID int64, olderThan time.Time, minCount int) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
DELETE FROM events e USING (
    SELECT person_external_id FROM events
    WHERE collection_id = $1
    GROUP BY person_external_id
    HAVING COUNT(*) < $2 AND MAX(created_at) < $3
) lone
WHERE e.collection_id = $1 AND e.person_external_id = lone.person_external_id`,
		collectionID, minCount, olderThan)
	if err != nil {
		return 0, fmt.Errorf("prune lone-person events: %w", err)
	}
	return res.RowsAffected()
}
