// Package textutil normalizes and tokenizes free-text item reports.
//
// Normalize lowercases and trims a string. Keywords splits text on word
// boundaries into a set of lowercase tokens, dropping a fixed list of common
// English function words and any token of two characters or fewer. Both are
// pure and deterministic; empty input yields an empty result.
package textutil
