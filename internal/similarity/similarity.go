// Package similarity provides the string matching primitives used by
// duplicate detection and free-text search: accent and case insensitive
// normalization, Levenshtein edit distance, a normalized similarity score
// and word-level fuzzy matching.
package similarity

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultThreshold is the similarity at which two words are considered a match.
const DefaultThreshold = 0.75

// Normalize case-folds s, strips diacritics and trims surrounding space.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.TrimSpace(cases.Fold().String(stripped))
}

// Levenshtein returns the edit distance between a and b, counted in runes,
// using the full dynamic-programming matrix.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	m := make([][]int, len(ra)+1)
	for i := range m {
		m[i] = make([]int, len(rb)+1)
		m[i][0] = i
	}
	for j := 0; j <= len(rb); j++ {
		m[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			m[i][j] = min(
				m[i-1][j]+1,
				m[i][j-1]+1,
				m[i-1][j-1]+cost,
			)
		}
	}
	return m[len(ra)][len(rb)]
}

// Similarity scores a and b in [0, 1] after normalization. Two empty strings
// are identical (1); one empty string against a non-empty one scores 0.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return 1
	}
	la, lb := len([]rune(na)), len([]rune(nb))
	longest := max(la, lb)
	if la == 0 || lb == 0 {
		return 0
	}
	return 1 - float64(Levenshtein(na, nb))/float64(longest)
}

// FuzzyMatch reports whether query matches target. The normalized query
// matches when it is a literal substring of the normalized target, or when
// every query word has some target word scoring at least threshold. An
// empty query matches everything.
func FuzzyMatch(target, query string, threshold float64) bool {
	nt, nq := Normalize(target), Normalize(query)
	if nq == "" || strings.Contains(nt, nq) {
		return true
	}

	targetWords := strings.Fields(nt)
	for _, qw := range strings.Fields(nq) {
		if !anyWordMatches(targetWords, qw, threshold) {
			return false
		}
	}
	return true
}

func anyWordMatches(words []string, query string, threshold float64) bool {
	for _, w := range words {
		if Similarity(w, query) >= threshold {
			return true
		}
	}
	return false
}
