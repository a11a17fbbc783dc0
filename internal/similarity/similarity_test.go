package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringIdentity(t *testing.T) {
	for _, s := range []string{"a", "Black iPhone 13", "  keys ", "café au lait", "x y z"} {
		assert.Equal(t, 1.0, String(s, s), s)
		assert.Equal(t, 0.0, String(s, ""), s)
		assert.Equal(t, 0.0, String("", s), s)
	}
	assert.Equal(t, 1.0, String("", ""))
}

func TestStringCaseAndWhitespaceInsensitive(t *testing.T) {
	assert.Equal(t, 1.0, String("Blue Backpack", "  blue backpack "))
}

func TestStringSubstring(t *testing.T) {
	assert.Equal(t, SubstringScore, String("Black iPhone 13", "black iphone 13 case"))
	assert.Equal(t, SubstringScore, String("black iphone 13 case", "Black iPhone 13"))
	assert.Equal(t, SubstringScore, String("wallet", "brown leather wallet"))
}

func TestStringLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"kitten", "sitting", 4.0 / 7.0},
		{"wallet", "walet", 5.0 / 6.0},
		{"abcd", "abce", 0.75},
		{"abc", "xyz", 0},
		{"Umbrella", "umbrela", 7.0 / 8.0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, String(tt.a, tt.b), 1e-9, "String(%q, %q)", tt.a, tt.b)
	}
}

func TestStringIsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"kitten", "sitting"},
		{"red umbrella", "umbrella red"},
		{"abcd", "dcba"},
		{"passport", "pasport"},
	}
	for _, p := range pairs {
		assert.InDelta(t, String(p[0], p[1]), String(p[1], p[0]), 1e-12, "%q vs %q", p[0], p[1])
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"café", "cafe", 1},
		{"Case", "case", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EditDistance(tt.a, tt.b), "EditDistance(%q, %q)", tt.a, tt.b)
	}
}

func TestKeywordOverlap(t *testing.T) {
	got := KeywordOverlap("lost my blue backpack", "found a blue backpack near gate")
	assert.InDelta(t, 2.0/6.0, got, 1e-9)
	assert.Greater(t, got, 0.0)
	assert.LessOrEqual(t, got, 1.0)

	assert.Equal(t, 0.0, KeywordOverlap("red umbrella", "silver laptop"))
	assert.Equal(t, 1.0, KeywordOverlap("Silver Laptop", "laptop, silver!"))
}

func TestKeywordOverlapEmptySets(t *testing.T) {
	assert.Equal(t, 0.0, KeywordOverlap("", "silver laptop"))
	assert.Equal(t, 0.0, KeywordOverlap("silver laptop", "a an the"))
	assert.Equal(t, 0.0, KeywordOverlap("", ""))
}

func TestLocationTokenBonus(t *testing.T) {
	got := Location("Library Building", "library building, 2nd floor")
	assert.Equal(t, 1.0, got)
	assert.LessOrEqual(t, got, 1.0)

	a, b := "Central Park", "Park Avenue"
	assert.InDelta(t, min(1, String(a, b)+LocationTokenBonus), Location(a, b), 1e-12)
}

func TestSharePlaceToken(t *testing.T) {
	assert.True(t, sharePlaceToken("Library Building", "library, 2nd floor"))
	assert.True(t, sharePlaceToken("gym", "Old GYM"))
	// Tokens of two characters or fewer do not count.
	assert.False(t, sharePlaceToken("Hall B2", "Room B2"))
	assert.False(t, sharePlaceToken("Parking lot", "Main library"))
}

func TestLocationWithoutSharedToken(t *testing.T) {
	pairs := [][2]string{
		{"Gym", "Cafeteria"},
		{"Hall A, 2F", "Room 2F"}, // shared token is too short
	}
	for _, p := range pairs {
		assert.InDelta(t, String(p[0], p[1]), Location(p[0], p[1]), 1e-12, "%q vs %q", p[0], p[1])
	}
}

func TestLocationMissing(t *testing.T) {
	assert.Equal(t, 0.0, Location("", "Library"))
	assert.Equal(t, 0.0, Location("Library", ""))
	assert.Equal(t, 0.0, Location("  ", "Library"))
}

func TestScoresStayInRange(t *testing.T) {
	inputs := []string{"", "a", "Library", "library, main hall", "Main Hall", "zzz", "Bus stop 42, Main St"}
	for _, a := range inputs {
		for _, b := range inputs {
			for _, v := range []float64{String(a, b), KeywordOverlap(a, b), Location(a, b)} {
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
			}
		}
	}
}
