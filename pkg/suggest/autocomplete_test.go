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

package suggest

import "testing"

func TestSplitLinesTrimsAndDropsBlank(t *testing.T) {
	out := splitLines("first\n\n  second  \nthird\n")
	want := []string{"first", "second", "third"}
	if len(out) != len(want) {
		t.Fatalf("out = %v, want %v", out, want)
	}
	for i, w := range want {
		if out[i] != w {
			t.Fatalf("out[%d] = %q, want %q", i, out[i], w)
		}
	}
}
