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

package ingest

import (
	"context"
	"fmt"
)

// SimpleEvent is one caller-supplied interaction record (§3's Event
// entity). SearchHistoryID, when set, back-references the Search-History
// row whose result surfaced ItemExternalID, letting retention and
// recommendation queries trace an event back to the search that produced
// it.
type SimpleEvent struct {
	Type             string  `json:"type"`
	PersonExternalID string  `json:"person_external_id"`
	ItemExternalID   string  `json:"item_external_id"`
	Weight           float64 `json:"weight,omitempty"`
	SearchHistoryID  *int64  `json:"search_history_id,omitempty"`
}

// RecordEvents implements the Event half of ingest: a Person is upserted
// implicitly (empty field map) on first reference, then each event is
// appended. Like Upsert, each event is processed independently.
func (p *Pipeline) RecordEvents(ctx context.Context, events []SimpleEvent) error {
	for _, e := range events {
		if _, err := p.Store.UpsertPerson(ctx, p.CollectionID, e.PersonExternalID, nil); err != nil {
			return fmt.Errorf("ingest: upsert person %q: %w", e.PersonExternalID, err)
		}
		if _, err := p.Store.AppendEvent(ctx, p.CollectionID, e.Type, e.PersonExternalID, e.ItemExternalID, e.Weight, e.SearchHistoryID); err != nil {
			return fmt.Errorf("ingest: append event: %w", err)
		}
	}
	return nil
}

// Delete removes items by external id, independently per item: a missing
// id is not an error, matching Upsert's per-item-atomic semantics.
func (p *Pipeline) Delete(ctx context.Context, externalIDs []string) error {
	for _, id := range externalIDs {
		if err := p.Store.DeleteItem(ctx, p.CollectionID, id); err != nil {
			return fmt.Errorf("ingest: delete %q: %w", id, err)
		}
	}
	return nil
}
