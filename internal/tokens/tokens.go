// Package tokens approximates language-model token costs with a
// characters-per-token heuristic.
//
// Estimates are deliberately coarse: one token per four characters, rounded
// up. Batch assembly only needs a stable upper-bound-ish figure to keep
// requests under the provider ceiling.
package tokens

import "unicode/utf8"

// CharsPerToken is the heuristic ratio used for every estimate
const CharsPerToken = 4

// Estimate returns ceil(characters/4) for text
func Estimate(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + CharsPerToken - 1) / CharsPerToken
}

// EstimateAll sums Estimate over every part
func EstimateAll(parts ...string) int {
	total := 0
	for _, p := range parts {
		total += Estimate(p)
	}
	return total
}

// Fits reports whether text is estimated at or under limit tokens
func Fits(text string, limit int) bool {
	return Estimate(text) <= limit
}

// Truncate drops trailing characters so the result fits within limit
// tokens. It never removes text from the middle.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	maxChars := limit * CharsPerToken
	if utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	i := 0
	for pos := range text {
		if i == maxChars {
			return text[:pos]
		}
		i++
	}
	return text
}
