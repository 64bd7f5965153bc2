// Package allocator groups assignments into recurring categories by name
// similarity and attaches an effort estimate to every record.
package allocator

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/daniel/canvas-reclaim-sync/internal/types"
)

// Normalize lowercases and trims an assignment name before comparison. No
// other normalization is applied: punctuation, stop words, and stemming all
// stay significant.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Ratio returns the character-sequence similarity of two strings in [0, 1]
// using a longest-matching-block ratio. Identical strings score 1.0; disjoint
// strings score near 0. Character order matters; this is not a token-set
// comparison.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(splitChars(a), splitChars(b)).Ratio()
}

// splitChars explodes a string into per-rune elements for the matcher.
func splitChars(s string) []string {
	chars := make([]string, 0, len(s))
	for _, r := range s {
		chars = append(chars, string(r))
	}
	return chars
}

// MatchGroup finds the group key for an assignment name, comparing the
// normalized name against each existing key in the table's insertion order.
// The first key scoring at or above threshold wins, even when a later key
// would score higher; callers rely on this being deterministic, which is why
// the rule table preserves insertion order. Keys are compared as stored.
func MatchGroup(name string, rules *types.RuleTable, threshold float64) (string, bool) {
	cleaned := Normalize(name)
	for _, key := range rules.Keys() {
		if Ratio(cleaned, key) >= threshold {
			return key, true
		}
	}
	return "", false
}
