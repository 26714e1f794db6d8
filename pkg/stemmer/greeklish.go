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

// greeklishStemmer ports original_source's GreeklishStemmer verbatim:
// transliterate Latin-script Greek ("greeklish") to Greek, run it through
// greekStemmer, then transliterate the stemmed result back.
type greeklishStemmer struct{}

func (greeklishStemmer) Name() string { return "greeklish" }

// Order matters: longer/double-letter sequences must be replaced before the
// single-letter table, or e.g. "TH" would become "ΤΗ" instead of "Θ".
var greeklishToGreekDoubles = []struct{ latin, greek string }{
	{"TH", "Θ"}, {"KH", "Χ"}, {"CH", "Χ"}, {"PS", "Ψ"}, {"PH", "Φ"},
	{"TZ", "ΤΖ"}, {"TS", "ΤΣ"}, {"KS", "Ξ"}, {"EU", "ΕΥ"}, {"EV", "ΕΥ"},
	{"AF", "ΑΥ"}, {"AV", "ΑΥ"}, {"OU", "ΟΥ"}, {"AI", "ΑΙ"}, {"EI", "ΕΙ"},
	{"OI", "ΟΙ"}, {"MP", "ΜΠ"}, {"NT", "ΝΤ"}, {"GB", "ΓΜΠ"}, {"GK", "ΓΚ"},
}

var greeklishToGreekSingles = map[string]string{
	"A": "Α", "B": "Β", "C": "Κ", "D": "Δ", "E": "Ε", "F": "Φ", "G": "Γ",
	"H": "Η", "I": "Ι", "J": "ΤΖ", "K": "Κ", "L": "Λ", "M": "Μ", "N": "Ν",
	"O": "Ο", "P": "Π", "Q": "Κ", "R": "Ρ", "S": "Σ", "T": "Τ", "U": "Υ",
	"V": "Β", "W": "Ω", "X": "Χ", "Y": "Υ", "Z": "Ζ",
}

var greekToGreeklishDoubles = []struct{ greek, latin string }{
	{"Θ", "TH"}, {"Χ", "CH"}, {"Ψ", "PS"}, {"Φ", "F"}, {"ΤΖ", "J"},
	{"ΤΣ", "TS"}, {"Ξ", "KS"}, {"ΜΠ", "MP"}, {"ΝΤ", "NT"}, {"ΓΚ", "GK"},
	{"ΟΥ", "OU"}, {"ΕΥ", "EV"}, {"ΑΥ", "AV"}, {"ΑΙ", "AI"}, {"ΕΙ", "EI"},
	{"ΟΙ", "OI"},
}

var greekToGreeklishSingles = map[string]string{
	"Α": "A", "Β": "V", "Γ": "G", "Δ": "D", "Ε": "E", "Ζ": "Z", "Η": "I",
	"Ι": "I", "Κ": "K", "Λ": "L", "Μ": "M", "Ν": "N", "Ο": "O", "Π": "P",
	"Ρ": "R", "Σ": "S", "Τ": "T", "Υ": "Y", "Φ": "F", "Χ": "X", "Ψ": "PS",
	"Ω": "W",
}

var greeklishSpecialCharacters = map[string]string{"-": " ", "/": " "}

// greekReduceCharacters folds near-homophone Greek letters together (η/υ/ω
// to ι/ι/ο, etc.) so greeklish spelling variants converge to the same
// stemmed form.
func greekReduceCharacters(s string) string {
	replacer := strings.NewReplacer(
		"η", "ι", "υ", "ι", "ω", "ο", "ψ", "σ", "ξ", "σ", "θ", "σ",
		"χ", "κ", "φ", "π", "β", "μπ", "γ", "γκ", "δ", "ντ",
	)
	return replacer.Replace(s)
}

func normalizeGreek(s string) string {
	s = removeGreekAccents(s)
	s = greekReduceCharacters(s)
	for k, v := range greeklishSpecialCharacters {
		s = strings.ReplaceAll(s, k, v)
	}
	s = strings.ReplaceAll(s, "ς", "σ")
	return strings.ToLower(s)
}

func greeklishToGreek(s string) string {
	s = strings.ToUpper(s)
	for _, d := range greeklishToGreekDoubles {
		s = strings.ReplaceAll(s, d.latin, d.greek)
	}
	for lat, gr := range greeklishToGreekSingles {
		s = strings.ReplaceAll(s, lat, gr)
	}
	return normalizeGreek(s)
}

func greekToGreeklish(s string) string {
	s = normalizeGreek(s)
	s = strings.ToUpper(s)
	for _, d := range greekToGreeklishDoubles {
		s = strings.ReplaceAll(s, d.greek, d.latin)
	}
	for gr, lat := range greekToGreeklishSingles {
		s = strings.ReplaceAll(s, gr, lat)
	}
	return strings.ToLower(s)
}

func (greeklishStemmer) Stem(phrase string) string {
	greek := greeklishToGreek(phrase)
	stemmedGreek := greekStemmer{}.Stem(greek)
	greeklish := greekToGreeklish(stemmedGreek)

	fields := strings.Fields(greeklish)
	kept := make([]string, 0, len(fields))
	for _, w := range fields {
		if len([]rune(w)) > 1 {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
