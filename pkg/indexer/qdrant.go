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

package indexer

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/kadirpekel/semhub/pkg/config"
	"github.com/kadirpekel/semhub/pkg/filterlang"
	"github.com/kadirpekel/semhub/pkg/store"
)

// QdrantIndexer is the "qdrant" backend: one Qdrant collection per semhub
// Collection, storing the item's vector and its normalized scalar fields
// as payload. Grounded on pkg/vector/qdrant.go's QdrantProvider (client
// setup, Upsert/Search/Delete/CreateCollection), generalized from that
// file's single flat id/vector/metadata shape to the filter/text/score
// semantics Search needs here.
type QdrantIndexer struct {
	client       *qdrant.Client
	db           *store.Store
	collectionID int64
	dimension    int
	qdrantName   string
}

// NewQdrantIndexer connects to Qdrant and names the backing collection
// deterministically from the semhub collection id.
func NewQdrantIndexer(cfg config.QdrantConfig, db *store.Store, collectionID int64, dimension int) (*QdrantIndexer, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}
	return &QdrantIndexer{
		client:       client,
		db:           db,
		collectionID: collectionID,
		dimension:    dimension,
		qdrantName:   fmt.Sprintf("semhub_collection_%d", collectionID),
	}, nil
}

func (q *QdrantIndexer) Close() error { return q.client.Close() }

// Recreate drops and re-creates the Qdrant collection with the configured
// vector dimension, then bulk-indexes every item.
func (q *QdrantIndexer) Recreate(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.qdrantName)
	if err != nil {
		return fmt.Errorf("recreate: check collection: %w", err)
	}
	if exists {
		if err := q.client.DeleteCollection(ctx, q.qdrantName); err != nil {
			return fmt.Errorf("recreate: delete collection: %w", err)
		}
	}
	if err := q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.qdrantName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(q.dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	}); err != nil {
		return fmt.Errorf("recreate: create collection: %w", err)
	}
	return q.IndexItems(ctx, nil)
}

// IndexItems upserts the named items (or every item in the collection).
func (q *QdrantIndexer) IndexItems(ctx context.Context, externalIDs []string) error {
	items, err := q.itemsToIndex(ctx, externalIDs)
	if err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, 0, len(items))
	for _, item := range items {
		vector := item.Vector
		if len(vector) != q.dimension {
			vector = make([]float32, q.dimension) // zero-filled, per §4.5 index_items
		}

		payload := make(map[string]*qdrant.Value, len(item.Fields)+2)
		if val, err := qdrant.NewValue(item.ExternalID); err == nil {
			payload["_external_id"] = val
		}
		if val, err := qdrant.NewValue(item.Description); err == nil {
			payload["description"] = val
		}
		for k, v := range item.Fields {
			val, err := qdrant.NewValue(v)
			if err != nil {
				continue
			}
			payload[filterlang.NormalizeField(k)] = val
		}

		points = append(points, &qdrant.PointStruct{
			Id:      &qdrant.PointId{PointIdOptions: &qdrant.PointId_Num{Num: uint64(item.ID)}},
			Vectors: qdrant.NewVectors(vector...),
			Payload: payload,
		})
	}

	if len(points) == 0 {
		return nil
	}

	if _, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.qdrantName,
		Points:         points,
	}); err != nil {
		return fmt.Errorf("index items: upsert: %w", err)
	}

	for _, item := range items {
		if err := q.db.ClearIndexDirty(ctx, item.ID); err != nil {
			return fmt.Errorf("index items: clear index_dirty: %w", err)
		}
	}
	return nil
}

func (q *QdrantIndexer) itemsToIndex(ctx context.Context, externalIDs []string) ([]*store.Item, error) {
	if len(externalIDs) == 0 {
		return q.db.ListItems(ctx, q.collectionID)
	}
	items := make([]*store.Item, 0, len(externalIDs))
	for _, id := range externalIDs {
		item, err := q.db.GetItem(ctx, q.collectionID, id)
		if err != nil {
			return nil, fmt.Errorf("get item %q: %w", id, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Cleanup indexes every item currently in the store, so store items absent
// from the index are added. Points whose item no longer exists in the store
// are not deleted.
func (q *QdrantIndexer) Cleanup(ctx context.Context) error {
	items, err := q.db.ListItems(ctx, q.collectionID)
	if err != nil {
		return fmt.Errorf("cleanup: list items: %w", err)
	}
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ExternalID
	}
	return q.IndexItems(ctx, ids)
}

// Search runs a Qdrant vector search (optionally filtered); a TextQuery
// with no Vector has no BM25-equivalent in this backend — Qdrant's payload
// index supports exact/prefix matching but not a scored free-text query,
// so text-only search on this backend degrades to filter-only matching,
// documented in DESIGN.md.
func (q *QdrantIndexer) Search(ctx context.Context, params SearchParams) ([]IndexHit, error) {
	if params.Vector != nil && len(params.Vector) != q.dimension {
		return nil, &DimensionMismatch{Got: len(params.Vector), Want: q.dimension}
	}

	limit := uint64(params.Limit)
	if limit == 0 {
		limit = 10
	}

	filter := filterlang.CompileQdrant(params.Filter)
	if len(params.ExcludeExternalIDs) > 0 {
		excludeConds := make([]*qdrant.Condition, len(params.ExcludeExternalIDs))
		for i, id := range params.ExcludeExternalIDs {
			excludeConds[i] = &qdrant.Condition{
				ConditionOneOf: &qdrant.Condition_Field{
					Field: &qdrant.FieldCondition{
						Key:   "_external_id",
						Match: &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: id}},
					},
				},
			}
		}
		if filter == nil {
			filter = &qdrant.Filter{}
		}
		filter.MustNot = append(filter.MustNot, excludeConds...)
	}

	vector := params.Vector
	if vector == nil {
		vector = make([]float32, q.dimension)
	}

	req := &qdrant.SearchPoints{
		CollectionName: q.qdrantName,
		Vector:         vector,
		Limit:          limit + uint64(params.Offset),
		Filter:         filter,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	result, err := q.client.GetPointsClient().Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	points := result.Result
	if params.Offset < len(points) {
		points = points[params.Offset:]
	} else {
		points = nil
	}

	out := make([]IndexHit, 0, len(points))
	for _, p := range points {
		if float64(p.Score) < params.ScoreThreshold {
			continue
		}
		hit := IndexHit{Similarity: float64(p.Score)}
		if p.Payload != nil {
			if v, ok := p.Payload["_external_id"]; ok {
				hit.ExternalID = v.GetStringValue()
			}
			if v, ok := p.Payload["description"]; ok {
				hit.Description = v.GetStringValue()
			}
		}
		out = append(out, hit)
	}
	return out, nil
}

var _ Indexer = (*QdrantIndexer)(nil)
