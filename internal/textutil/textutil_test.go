package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "black iphone 13", Normalize("  Black iPhone 13 \n"))
	assert.Equal(t, "", Normalize("   "))
	assert.Equal(t, "", Normalize(""))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"lost", "my", "blue", "backpack"}, Tokenize("Lost my BLUE backpack!"))
	assert.Equal(t, []string{"room_101", "2nd", "floor"}, Tokenize("room_101, 2nd-floor"))
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("?! ..."))
}

func TestKeywordsDropsStopWordsAndShortTokens(t *testing.T) {
	got := Keywords("The keys to my car are on a red lanyard")
	want := map[string]struct{}{
		"keys":    {},
		"car":     {},
		"red":     {},
		"lanyard": {},
	}
	assert.Equal(t, want, got)
}

func TestKeywordsDeduplicates(t *testing.T) {
	got := Keywords("wallet Wallet WALLET")
	assert.Len(t, got, 1)
	assert.Contains(t, got, "wallet")
}

func TestKeywordsEmpty(t *testing.T) {
	assert.Empty(t, Keywords(""))
	assert.Empty(t, Keywords("a an the of to"))
}

func TestIsStopWord(t *testing.T) {
	for _, w := range []string{"the", "their", "should", "my"} {
		assert.True(t, IsStopWord(w), w)
	}
	for _, w := range []string{"wallet", "The", ""} {
		assert.False(t, IsStopWord(w), w)
	}
}
