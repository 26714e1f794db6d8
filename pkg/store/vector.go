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

import (
	"encoding/binary"
	"fmt"
	"math"
)

// supportedDimensions mirrors config.EmbedderConfig's supported set and the
// items table's four vector_<dim> columns.
var supportedDimensions = []int{384, 768, 1536, 3072}

// vectorColumn returns the items column name that stores a vector of the
// given dimension, or "" if the dimension has no backing column.
func vectorColumn(dim int) string {
	for _, d := range supportedDimensions {
		if d == dim {
			return fmt.Sprintf("vector_%d", d)
		}
	}
	return ""
}

// encodeVector packs a float32 slice into a little-endian bytea.
func encodeVector(v []float32) []byte {
	if v == nil {
		return nil
	}
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector unpacks a little-endian bytea into a float32 slice.
func decodeVector(b []byte) []float32 {
	if len(b) == 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
