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

package stemmer

import "strings"

// englishStemmer ports original_source's EnglishStemmer verbatim: the
// suffix list, stopword list and punctuation-token set are copied in the
// original's order since suffix order determines which one strips first.
type englishStemmer struct{}

func (englishStemmer) Name() string { return "english" }

var (
	englishSuffixes = []string{"ing", "ly", "ious", "ies", "ive", "es", "s", "ment"}
	englishStopwords = toSet([]string{
		"is", "are", "was", "were", "be", "been", "being", "have", "has", "had",
		"do", "does", "did", "shall", "will", "should", "would", "may", "might",
		"must", "can", "could", "to", "a",
	})
)

func (englishStemmer) Stem(phrase string) string {
	phrase = strings.ToLower(phrase)
	phrase = stripTokens(phrase, punctuationTokens)
	phrase = dropWords(phrase, englishStopwords)
	phrase = stemWords(phrase, englishSuffixes)
	return phrase
}
