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

package llms

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// WithFileText appends the text extracted from each FileInput to prompt.
// Every file is parsed as a PDF whatever its MimeType; a file that cannot
// be parsed adds a note saying it could not be read. No provider in this
// stack accepts raw file bytes over the chat completions wire format, and
// this is the one fallback documented for file inputs (see SPEC_FULL.md
// §4.3). Exported so
// FunctionQuery callers (which, unlike SingleQuery, takes no files
// parameter of its own) can fold file text into a message by hand — the
// Aggregator's single-function-call path does this (§4.10 step 3).
func WithFileText(prompt string, files []FileInput) string {
	if len(files) == 0 {
		return prompt
	}

	var b strings.Builder
	b.WriteString(prompt)
	for _, f := range files {
		text, err := extractPDFText(f.Data)
		if err != nil {
			b.WriteString(fmt.Sprintf("\n\n[attachment %q could not be read: %v]", f.Filename, err))
			continue
		}
		b.WriteString(fmt.Sprintf("\n\n[attachment %q]\n%s", f.Filename, text))
	}
	return b.String()
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text, err := io.ReadAll(content)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "--- page %d ---\n%s\n", i, text)
	}
	return b.String(), nil
}
