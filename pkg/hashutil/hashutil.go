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

// Package hashutil provides the stable, deployment-fixed content hash used
// for cache keys and the Aggregator's combination-level dedup cache, ported
// from original_source/utils/base.py:get_fields_hash. The original hashes
// Python's json.dumps(data, sort_keys=True); this replicates that by
// marshaling through a key-sorted map before hashing so the same logical
// value always produces the same hash regardless of construction order.
package hashutil

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Canonical marshals v to JSON with object keys sorted at every level, so
// two values built in different field orders produce byte-identical output.
func Canonical(v any) ([]byte, error) {
	normalized, err := normalize(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(normalized)
}

// Stable returns the xxhash of v's canonical JSON encoding, formatted as a
// lowercase hex string. Used wherever the original computed
// hashlib.md5(json.dumps(data, sort_keys=True)).hexdigest() — the spec only
// requires a hash that's fixed per deployment and collision-resistant
// enough for a dedup/cache key, not cryptographic strength.
func Stable(v any) (string, error) {
	data, err := Canonical(v)
	if err != nil {
		return "", fmt.Errorf("canonicalize for hashing: %w", err)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data)), nil
}

// StableString hashes a single string's raw bytes, skipping the JSON
// encoding, for the common single-value cache-key case (e.g. the ingest
// preprocessing cache key ingest:preprocess:<hash(description)>). Because Stable hashes the
// quoted JSON form, StableString(s) and Stable(s) give different values.
func StableString(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}

// normalize walks map[string]any and []any values recursively, rebuilding
// them from their normalized children. Any other value, structs included,
// is returned unchanged; encoding/json already sorts map[string]any keys.
func normalize(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			n, err := normalize(val[k])
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	default:
		return val, nil
	}
}
