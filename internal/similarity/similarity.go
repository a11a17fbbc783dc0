// Package similarity scores how alike two free-text item descriptions are.
// Every function is pure and returns a value in [0, 1].
package similarity

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/erazemk/lostfound/internal/textutil"
)

const (
	// SubstringScore is returned when one normalized string contains the other.
	SubstringScore = 0.85

	// LocationTokenBonus is added when two locations share a place-name token.
	LocationTokenBonus = 0.2
)

// locationSplitPattern separates location parts on commas and whitespace.
var locationSplitPattern = regexp.MustCompile(`[,\s]+`)

// String compares two strings case-insensitively.
//
// Equal strings score 1 and an empty side scores 0. When the shorter string
// is contained in the longer one the score is SubstringScore; otherwise it is
// the normalized Levenshtein similarity 1 - distance/len(longer).
func String(a, b string) float64 {
	s1 := textutil.Normalize(a)
	s2 := textutil.Normalize(b)

	if s1 == s2 {
		return 1
	}
	if s1 == "" || s2 == "" {
		return 0
	}

	// On equal length the second argument is treated as the longer one.
	longer, shorter := s2, s1
	if utf8.RuneCountInString(s1) > utf8.RuneCountInString(s2) {
		longer, shorter = s1, s2
	}

	if strings.Contains(longer, shorter) {
		return SubstringScore
	}

	longerLen := utf8.RuneCountInString(longer)
	distance := EditDistance(shorter, longer)
	return math.Max(0, float64(longerLen-distance)/float64(longerLen))
}

// EditDistance returns the Levenshtein distance between a and b counted in
// runes, with unit cost for insertion, deletion and substitution. It is case
// sensitive; String normalizes before calling it.
func EditDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// KeywordOverlap returns the Jaccard index of the keyword sets of a and b.
// It is 0 when either text has no keywords.
func KeywordOverlap(a, b string) float64 {
	k1 := textutil.Keywords(a)
	k2 := textutil.Keywords(b)
	if len(k1) == 0 || len(k2) == 0 {
		return 0
	}

	overlap := 0
	for k := range k1 {
		if _, ok := k2[k]; ok {
			overlap++
		}
	}
	union := len(k1) + len(k2) - overlap
	return float64(overlap) / float64(union)
}

// Location compares two free-text locations. It is String(a, b) plus
// LocationTokenBonus when any part longer than two characters appears
// verbatim in both, capped at 1. A missing location scores 0.
func Location(a, b string) float64 {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0
	}

	score := String(a, b)
	if sharePlaceToken(a, b) {
		return math.Min(1, score+LocationTokenBonus)
	}
	return score
}

func sharePlaceToken(a, b string) bool {
	parts := locationParts(b)
	for part := range locationParts(a) {
		if utf8.RuneCountInString(part) <= 2 {
			continue
		}
		if _, ok := parts[part]; ok {
			return true
		}
	}
	return false
}

func locationParts(s string) map[string]struct{} {
	raw := locationSplitPattern.Split(strings.ToLower(s), -1)
	parts := make(map[string]struct{}, len(raw))
	for _, p := range raw {
		if p != "" {
			parts[p] = struct{}{}
		}
	}
	return parts
}
