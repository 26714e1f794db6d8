package llms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kadirpekel/semhub/pkg/config"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*chatCompletionProvider, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	cfg := &config.LLMConfig{Type: "openai", Model: "gpt-4o-mini", APIKey: "test-key", BaseURL: srv.URL, Timeout: "5s"}
	cfg.SetDefaults()
	return newChatCompletionProvider(cfg), srv
}

func TestSingleQuery(t *testing.T) {
	p, srv := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer auth header")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletionResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{{Message: chatMessage{Role: "assistant", Content: "hello there"}}},
		})
	})
	defer srv.Close()

	got, err := p.SingleQuery(context.Background(), "say hi", nil)
	if err != nil {
		t.Fatalf("SingleQuery: %v", err)
	}
	if got != "hello there" {
		t.Errorf("got %q, want %q", got, "hello there")
	}
}

func TestFunctionQuery(t *testing.T) {
	p, srv := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Tools) != 1 || req.Tools[0].Function.Name != "search" {
			t.Fatalf("expected tool 'search' to be offered, got %+v", req.Tools)
		}

		tc := toolCall{ID: "call_1", Type: "function"}
		tc.Function.Name = "search"
		tc.Function.Arguments = `{"query":"red shoes"}`

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletionResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{{Message: chatMessage{Role: "assistant", ToolCalls: []toolCall{tc}}}},
		})
	})
	defer srv.Close()

	calls, err := p.FunctionQuery(context.Background(), []Message{{Role: "user", Content: "find red shoes"}}, []ToolDefinition{
		{Name: "search", Description: "search items", Parameters: map[string]any{"type": "object"}},
	})
	if err != nil {
		t.Fatalf("FunctionQuery: %v", err)
	}
	if len(calls) != 1 || calls[0].Name != "search" || calls[0].Arguments["query"] != "red shoes" {
		t.Fatalf("unexpected tool calls: %+v", calls)
	}
}

func TestSingleQueryLLMError(t *testing.T) {
	p, srv := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit_error"}}`))
	})
	defer srv.Close()

	if _, err := p.SingleQuery(context.Background(), "hi", nil); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
