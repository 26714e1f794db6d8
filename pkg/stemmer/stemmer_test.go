package stemmer

import (
	"strings"
	"testing"
)

func TestStemEnglishAndGreek(t *testing.T) {
	got := Stem([]string{"english", "greek"}, "this is a great day")
	want := "thi great day"
	if got != want {
		t.Errorf("Stem(%q) = %q, want %q", "this is a great day", got, want)
	}
}

func TestEnglishStemmerDropsStopwordsAndPunctuation(t *testing.T) {
	got := englishStemmer{}.Stem("Shoes, Running! (Fast) is Best")
	if strings.ContainsAny(got, ",!()") {
		t.Errorf("expected punctuation stripped, got %q", got)
	}
	for _, w := range strings.Fields(got) {
		if w == "is" {
			t.Errorf("expected stopword %q dropped, got %q", "is", got)
		}
	}
}

func TestEnglishStemmerSuffixStripping(t *testing.T) {
	got := englishStemmer{}.Stem("running")
	if got != "runn" {
		t.Errorf("Stem(running) = %q, want %q", got, "runn")
	}
}

func TestGreekStemmerLowercasesAndStripsAccents(t *testing.T) {
	got := greekStemmer{}.Stem("Ελαστικά")
	if strings.ContainsAny(got, "ΑΒΓΔΕΖΗΘΙΚΛΜΝΞΟΠΡΣΤΥΦΧΨΩ") {
		t.Errorf("expected lowercase-only output, got %q", got)
	}
	if strings.ContainsAny(got, "άέίόύώή") {
		t.Errorf("expected accents stripped, got %q", got)
	}
}

func TestGreeklishRoundTripDropsSingleLetterWords(t *testing.T) {
	got := greeklishStemmer{}.Stem("a great i car")
	for _, w := range strings.Fields(got) {
		if len([]rune(w)) <= 1 {
			t.Errorf("expected single-letter words dropped from %q, found %q", got, w)
		}
	}
}

func TestStemUnknownNameIsNoOp(t *testing.T) {
	got := Stem([]string{"klingon"}, "unchanged phrase")
	if got != "unchanged phrase" {
		t.Errorf("expected unknown stemmer name to be a no-op, got %q", got)
	}
}
