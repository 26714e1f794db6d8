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

package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestHTTPStatusMapsEachTypedError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"ConfigError", &ConfigError{Message: "cycle"}, 422},
		{"ItemNotFound", &ItemNotFound{ExternalID: "x"}, 422},
		{"DimensionMismatch", &DimensionMismatch{Got: 3, Want: 4}, 422},
		{"UpstreamUnavailable", &UpstreamUnavailable{Service: "embed"}, 502},
		{"LLMBadResponse", &LLMBadResponse{Provider: "openai"}, 502},
		{"StoreError", &StoreError{Operation: "insert"}, 500},
		{"ValidationError", &ValidationError{Fields: map[string]string{"name": "required"}}, 422},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Errorf("%s: HTTPStatus = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestHTTPStatusUnwrapsThroughPlainWrapping(t *testing.T) {
	inner := &ConfigError{Message: "cycle"}
	wrapped := fmt.Errorf("aggregate: %w", inner)
	if got := HTTPStatus(wrapped); got != 422 {
		t.Fatalf("HTTPStatus(wrapped) = %d, want 422", got)
	}
}

func TestHTTPStatusDefaultsToInternalServerError(t *testing.T) {
	if got := HTTPStatus(errors.New("opaque")); got != 500 {
		t.Fatalf("HTTPStatus(opaque) = %d, want 500", got)
	}
}

func TestErrorsAsFindsWrappedUpstreamUnavailable(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	wrapped := &UpstreamUnavailable{Service: "llm", Err: cause}
	var target *UpstreamUnavailable
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As failed to match UpstreamUnavailable")
	}
	if !errors.Is(wrapped, cause) {
		t.Fatal("errors.Is failed to find wrapped cause")
	}
}
