package embedders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kadirpekel/semhub/pkg/config"
)

func TestFieldsToString(t *testing.T) {
	got := FieldsToString(map[string][]string{
		"color": {"red", "black"},
		"brand": {"nike"},
	})
	want := "brand=nike, color=red black"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFieldsToStringOrderInvariant(t *testing.T) {
	a := FieldsToString(map[string][]string{"a": {"1"}, "z": {"2"}, "m": {"3"}})
	b := FieldsToString(map[string][]string{"z": {"2"}, "m": {"3"}, "a": {"1"}})
	if a != b {
		t.Errorf("expected map-iteration-order invariance, got %q vs %q", a, b)
	}
}

func TestOpenAIEmbedderBatching(t *testing.T) {
	var gotBatchSizes []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openAIEmbedRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotBatchSizes = append(gotBatchSizes, len(req.Input))

		resp := openAIEmbedResponse{}
		for i := range req.Input {
			resp.Data = append(resp.Data, struct {
				Embedding []float32 `json:"embedding"`
				Index     int       `json:"index"`
			}{Embedding: []float32{float32(i), 0, 0}, Index: i})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	cfg := &config.EmbedderConfig{Type: "openai", Model: "text-embedding-3-small", APIKey: "k", BaseURL: srv.URL, BatchSize: 2, Dimension: 1536}
	e := newOpenAIEmbedder(cfg)

	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vecs))
	}
	if len(gotBatchSizes) != 2 || gotBatchSizes[0] != 2 || gotBatchSizes[1] != 1 {
		t.Fatalf("expected batches [2,1], got %v", gotBatchSizes)
	}
}

func TestRegistryCreateFromConfigUnknownType(t *testing.T) {
	r := NewRegistry()
	_, err := r.CreateFromConfig("default", &config.EmbedderConfig{Type: "bogus"})
	if err == nil {
		t.Fatal("expected error for unknown embedder type")
	}
}
