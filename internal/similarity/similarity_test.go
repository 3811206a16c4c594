package similarity

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  Café  ":      "cafe",
		"AÇÚCAR União":  "acucar uniao",
		"":              "",
		"already plain": "already plain",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"café", "cafe", 1},
		{"same", "same", 0},
	}
	for _, tt := range tests {
		if got := Levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"accent and case insensitive", "Café", "cafe", 1},
		{"nothing in common", "Uber", "Spotify", 0},
		{"both empty", "", "  ", 1},
		{"one empty", "", "Netflix", 0},
		{"one edit out of six", "Netflx", "Netflix", 1 - 1.0/7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		name          string
		target, query string
		want          bool
	}{
		{"literal substring", "Uber Trip Downtown", "uber trip", true},
		{"accent insensitive substring", "Padaria São João", "sao joao", true},
		{"typo in single word", "Spotify Premium", "spotfy", true},
		{"every word must match", "Spotify Premium", "spotfy family", false},
		{"words in any order", "Amazon Prime Video", "video amazon", true},
		{"unrelated", "Electricity bill", "netflix", false},
		{"empty query", "anything", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FuzzyMatch(tt.target, tt.query, DefaultThreshold); got != tt.want {
				t.Errorf("FuzzyMatch(%q, %q) = %v, want %v", tt.target, tt.query, got, tt.want)
			}
		})
	}
}
