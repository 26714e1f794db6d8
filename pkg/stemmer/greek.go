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

// greekStemmer ports original_source's GreekStemmer verbatim.
type greekStemmer struct{}

func (greekStemmer) Name() string { return "greek" }

var (
	greekStopwords = toSet([]string{
		"ειμαι", "εισαι", "ειναι", "ειμαστε", "ειστε", "σε", "για", "στην",
		"στον", "απο", "εως",
	})

	// Suffix order matters: the first matching entry wins, same as the
	// original's plain for-loop.
	greekSuffixes = []string{
		"ωντας", "οντας", "ιωντας", "ουσας", "ουσα", "ουμε", "ουνε", "ουνται",
		"εσαι", "εστε", "εται", "ουμε", "ουν", "ετε", "εις", "ει", "ειτε",
		"ια", "ιες", "ιων", "ος", "ου", "α", "ες", "ων", "ους", "ας", "η", "ης", "ων", "του",
	}
)

// removeGreekAccents strips the fixed set of precomposed Greek accented
// vowels down to their bare form. The original calls unicodedata.normalize
// ("NFD") and filters combining marks; golang.org/x/text/unicode/norm
// (which would give the same general behavior) appears nowhere in the
// example pack, so this enumerates the same fixed accent table the
// original's own remove_accents already uses for Greek proper.
func removeGreekAccents(word string) string {
	replacer := strings.NewReplacer(
		"ά", "α", "έ", "ε", "ί", "ι", "ό", "ο", "ύ", "υ", "ώ", "ω", "ή", "η",
		"ϊ", "ι", "ϋ", "υ", "ΐ", "ι", "ΰ", "υ",
	)
	return replacer.Replace(word)
}

func (greekStemmer) Stem(phrase string) string {
	phrase = strings.ToLower(phrase)
	phrase = removeGreekAccents(phrase)
	phrase = stripTokens(phrase, punctuationTokens)
	phrase = dropWords(phrase, greekStopwords)
	phrase = stemWords(phrase, greekSuffixes)
	return phrase
}
