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

import "testing"

func TestVectorRoundTrip(t *testing.T) {
	v := []float32{0.1, -0.2, 3.14159, 0, -1}
	got := decodeVector(encodeVector(v))
	if len(got) != len(v) {
		t.Fatalf("decodeVector length = %d, want %d", len(got), len(v))
	}
	for i := range v {
		if got[i] != v[i] {
			t.Errorf("decodeVector[%d] = %v, want %v", i, got[i], v[i])
		}
	}
}

func TestVectorColumnKnownDimensions(t *testing.T) {
	cases := map[int]string{384: "vector_384", 768: "vector_768", 1536: "vector_1536", 3072: "vector_3072"}
	for dim, want := range cases {
		if got := vectorColumn(dim); got != want {
			t.Errorf("vectorColumn(%d) = %q, want %q", dim, got, want)
		}
	}
}

func TestVectorColumnUnknownDimension(t *testing.T) {
	if got := vectorColumn(100); got != "" {
		t.Errorf("vectorColumn(100) = %q, want empty", got)
	}
}

func TestEncodeVectorNil(t *testing.T) {
	if got := encodeVector(nil); got != nil {
		t.Errorf("encodeVector(nil) = %v, want nil", got)
	}
	if got := decodeVector(nil); got != nil {
		t.Errorf("decodeVector(nil) = %v, want nil", got)
	}
}
