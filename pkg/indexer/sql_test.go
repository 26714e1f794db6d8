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
	"encoding/binary"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kadirpekel/semhub/pkg/filterlang"
	"github.com/kadirpekel/semhub/pkg/store"
)

// encodeVectorLE mirrors pkg/store's little-endian vector wire format
// (see pkg/store/vector_test.go's TestVectorRoundTrip) so these rows scan
// the same way a real Postgres bytea column would.
func encodeVectorLE(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

const itemColumns = "id, collection_id, external_id, fields, scores, description, description_hash, " +
	"vector_384, vector_768, vector_1536, vector_3072, embeddings_dirty, index_dirty, created_at, updated_at"

type mockItem struct {
	id         int64
	externalID string
	fields     map[string]any
	desc       string
	vector     []float32
}

func newMockIndexer(t *testing.T, collectionID int64, dimension int, items []mockItem) *SQLIndexer {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	rows := sqlmock.NewRows([]string{
		"id", "collection_id", "external_id", "fields", "scores", "description", "description_hash",
		"vector_384", "vector_768", "vector_1536", "vector_3072", "embeddings_dirty", "index_dirty",
		"created_at", "updated_at",
	})
	now := time.Unix(0, 0).UTC()
	for _, item := range items {
		fieldsJSON, err := json.Marshal(item.fields)
		if err != nil {
			t.Fatalf("marshal fields: %v", err)
		}
		var v384 []byte
		if len(item.vector) > 0 {
			v384 = encodeVectorLE(item.vector)
		}
		rows.AddRow(item.id, collectionID, item.externalID, fieldsJSON, []byte(`{}`), item.desc, "hash",
			v384, nil, nil, nil, false, false, now, now)
	}
	mock.ExpectQuery("SELECT " + itemColumns + " FROM items WHERE collection_id").WillReturnRows(rows)

	return NewSQLIndexer(store.New(db), collectionID, dimension)
}

func TestSQLIndexerSearchLimitZeroReturnsEmpty(t *testing.T) {
	idx := newMockIndexer(t, 1, 0, []mockItem{
		{id: 1, externalID: "a", fields: map[string]any{}, desc: "a widget"},
	})

	hits, err := idx.Search(context.Background(), SearchParams{TextQuery: "widget", Limit: 0})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("Search with Limit=0 returned %d hits, want 0", len(hits))
	}
}

func TestSQLIndexerSearchCombinesVectorAndText(t *testing.T) {
	idx := newMockIndexer(t, 1, 3, []mockItem{
		// vectorOnly is a perfect cosine match but has no text overlap.
		{id: 1, externalID: "vector-only", fields: map[string]any{}, desc: "unrelated", vector: []float32{1, 0, 0}},
		// textOnly shares no vector direction but matches the text query exactly.
		{id: 2, externalID: "text-only", fields: map[string]any{}, desc: "red sneakers", vector: []float32{0, 1, 0}},
		// both scores on top: same vector as vector-only, same text as text-only.
		{id: 3, externalID: "both", fields: map[string]any{}, desc: "red sneakers", vector: []float32{1, 0, 0}},
	})

	hits, err := idx.Search(context.Background(), SearchParams{
		Vector:    []float32{1, 0, 0},
		TextQuery: "red sneakers",
		Limit:     10,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("Search returned %d hits, want 3", len(hits))
	}
	if hits[0].ExternalID != "both" {
		t.Errorf("top hit = %q, want %q (combined vector+text score should rank highest)", hits[0].ExternalID, "both")
	}
	// vector-only's lone cosine score must not have been discarded in favor
	// of the text score, nor vice versa.
	var vectorOnlyScore, bothScore float64
	for _, h := range hits {
		switch h.ExternalID {
		case "vector-only":
			vectorOnlyScore = h.Similarity
		case "both":
			bothScore = h.Similarity
		}
	}
	if bothScore <= vectorOnlyScore {
		t.Errorf("combined score %v should exceed vector-only score %v", bothScore, vectorOnlyScore)
	}
}

func TestSQLIndexerSearchFiltersScalarVsListField(t *testing.T) {
	idx := newMockIndexer(t, 1, 0, []mockItem{
		{id: 1, externalID: "scalar", fields: map[string]any{"tags": "red"}, desc: "x"},
		{id: 2, externalID: "list", fields: map[string]any{"tags": []any{"red", "large"}}, desc: "x"},
	})

	hits, err := idx.Search(context.Background(), SearchParams{
		Filter: filterlang.Leaf("tags", filterlang.OpContains, []any{"red"}),
		Limit:  10,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].ExternalID != "list" {
		t.Fatalf("Search with contains filter = %+v, want only the list-valued item", hits)
	}
}
