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

// Package apperror is the §7 error taxonomy: one struct per error kind,
// each implementing error/Unwrap plus an HTTPStatus() method the HTTP
// surface consults to choose a response status without a central
// type-switch at every call site.
package apperror

import "fmt"

// ConfigError covers invalid user configuration: cyclic field
// dependencies, an unknown distance function or indexer backend, an
// unsupported vector length, or a score expression that fails to parse.
type ConfigError struct {
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }
func (e *ConfigError) HTTPStatus() int { return 422 }

// ItemNotFound reports a reference to an item that does not exist in the
// collection. The aggregation expansion does not return it: an "item"
// field whose search finds nothing drops that combination instead.
type ItemNotFound struct {
	ExternalID string
}

func (e *ItemNotFound) Error() string {
	return fmt.Sprintf("item not found: %s", e.ExternalID)
}

func (e *ItemNotFound) HTTPStatus() int { return 422 }

// DimensionMismatch is returned when a computed query vector's length
// disagrees with the collection's configured embedding dimension.
type DimensionMismatch struct {
	Got, Want int
}

func (e *DimensionMismatch) Error() string {
	return fmt.Sprintf("vector dimension mismatch: got %d, want %d", e.Got, e.Want)
}

func (e *DimensionMismatch) HTTPStatus() int { return 422 }

// UpstreamUnavailable is returned when an embedding or LLM call fails
// after the client's own retry budget is exhausted.
type UpstreamUnavailable struct {
	Service string
	Err     error
}

func (e *UpstreamUnavailable) Error() string {
	return fmt.Sprintf("upstream unavailable: %s: %v", e.Service, e.Err)
}

func (e *UpstreamUnavailable) Unwrap() error { return e.Err }
func (e *UpstreamUnavailable) HTTPStatus() int { return 502 }

// LLMBadResponse is returned when an LLM call that required a tool call
// returned none.
type LLMBadResponse struct {
	Provider string
}

func (e *LLMBadResponse) Error() string {
	return fmt.Sprintf("llm bad response: %s returned no tool call", e.Provider)
}

func (e *LLMBadResponse) HTTPStatus() int { return 502 }

// CacheError marks a cache backend failure. It is never propagated to a
// caller — the cache package degrades every CacheError to a miss or a
// dropped write and logs it at warn level — but the type exists so that
// logging call sites can tag what they're logging without inventing an
// ad hoc string.
type CacheError struct {
	Operation string
	Key       string
	Err       error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s failed for key %s: %v", e.Operation, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

// StoreError wraps a database failure. Always propagated as 500: a
// caller can't retry its way past a store-layer error.
type StoreError struct {
	Operation string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s: %v", e.Operation, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
func (e *StoreError) HTTPStatus() int { return 500 }

// ValidationError is a request schema violation, carrying one message per
// offending field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %d field(s) invalid", len(e.Fields))
}

func (e *ValidationError) HTTPStatus() int { return 422 }

// statusCoder is implemented by every typed error above except CacheError,
// which is never surfaced to an HTTP caller.
type statusCoder interface {
	HTTPStatus() int
}

// HTTPStatus maps err to the status code its concrete apperror type
// declares, walking the Unwrap chain. An err with no typed apperror in
// its chain maps to 500, matching StoreError's default: an error this
// package doesn't recognize is treated as an opaque internal failure.
func HTTPStatus(err error) int {
	for err != nil {
		if sc, ok := err.(statusCoder); ok {
			return sc.HTTPStatus()
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = unwrapper.Unwrap()
	}
	return 500
}
