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

package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kadirpekel/semhub/pkg/apperror"
	"github.com/kadirpekel/semhub/pkg/llms"
)

// fakeProvider is the minimal llms.Provider stand-in resolveLLM needs;
// none of its methods are exercised by these tests.
type fakeProvider struct{ name string }

func (f *fakeProvider) SingleQuery(ctx context.Context, prompt string, files []llms.FileInput) (string, error) {
	return "", nil
}
func (f *fakeProvider) FunctionQuery(ctx context.Context, messages []llms.Message, tools []llms.ToolDefinition) ([]llms.ToolCall, error) {
	return nil, nil
}
func (f *fakeProvider) GetModelName() string { return f.name }
func (f *fakeProvider) Close() error         { return nil }

func TestResolveLLMEmptyNameFallsBackToDefault(t *testing.T) {
	reg := llms.NewRegistry()
	fallback := &fakeProvider{name: "fallback"}

	got, err := resolveLLM(reg, "", fallback)
	if err != nil {
		t.Fatalf("resolveLLM: %v", err)
	}
	if got != fallback {
		t.Errorf("resolveLLM(\"\") = %v, want fallback", got)
	}
}

func TestResolveLLMNamedProvider(t *testing.T) {
	reg := llms.NewRegistry()
	want := &fakeProvider{name: "heavy"}
	if err := reg.Register("heavy", want); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := resolveLLM(reg, "heavy", nil)
	if err != nil {
		t.Fatalf("resolveLLM: %v", err)
	}
	if got != want {
		t.Errorf("resolveLLM(\"heavy\") = %v, want %v", got, want)
	}
}

func TestResolveLLMUnknownNameIsConfigError(t *testing.T) {
	reg := llms.NewRegistry()

	_, err := resolveLLM(reg, "nonexistent", nil)
	var ce *apperror.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("resolveLLM(unknown) error = %v, want *apperror.ConfigError", err)
	}
	if apperror.HTTPStatus(err) != 422 {
		t.Errorf("HTTPStatus = %d, want 422", apperror.HTTPStatus(err))
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "", "c"); got != "c" {
		t.Errorf("firstNonEmpty = %q, want %q", got, "c")
	}
	if got := firstNonEmpty("a", "b"); got != "a" {
		t.Errorf("firstNonEmpty = %q, want %q", got, "a")
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("firstNonEmpty = %q, want empty", got)
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/items", strings.NewReader(`{"collection":"c","bogus":1}`))
	var dst itemsRequest
	err := decodeJSON(req, &dst)
	var ve *apperror.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("decodeJSON with unknown field error = %v, want *apperror.ValidationError", err)
	}
}

func TestDecodeJSONNilBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/items", nil)
	req.Body = nil
	var dst itemsRequest
	err := decodeJSON(req, &dst)
	var ve *apperror.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("decodeJSON with nil body error = %v, want *apperror.ValidationError", err)
	}
}

func TestDecodeJSONValid(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/items", strings.NewReader(`{"collection":"c","sync":true}`))
	var dst itemsRequest
	if err := decodeJSON(req, &dst); err != nil {
		t.Fatalf("decodeJSON: %v", err)
	}
	if dst.Collection != "c" || !dst.Sync {
		t.Errorf("decodeJSON got %+v", dst)
	}
}

func TestWriteErrorMapsStatusAndFields(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/items", nil)

	writeError(rec, req, &apperror.ValidationError{Fields: map[string]string{"items": "too many"}})

	if rec.Code != 422 {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "too many") {
		t.Errorf("body = %q, want it to contain field message", rec.Body.String())
	}
}

func TestWriteErrorUnknownErrDefaultsTo500(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)

	writeError(rec, req, errors.New("boom"))

	if rec.Code != 500 {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRequestIDMiddlewareGeneratesAndEchoesHeader(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Request-Id")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	requestIDMiddleware(next).ServeHTTP(rec, req)

	if seen == "" {
		t.Fatal("request id header was not set on the inbound request")
	}
	if rec.Header().Get("X-Request-Id") != seen {
		t.Errorf("response X-Request-Id = %q, want %q", rec.Header().Get("X-Request-Id"), seen)
	}
}

func TestRequestIDMiddlewarePreservesCallerSuppliedID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-Id", "caller-id")
	requestIDMiddleware(next).ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-Id") != "caller-id" {
		t.Errorf("X-Request-Id = %q, want %q", rec.Header().Get("X-Request-Id"), "caller-id")
	}
}

func TestRecoverMiddlewareTurnsPanicInto500(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	recoverMiddleware(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
