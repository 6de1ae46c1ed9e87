// File: internal/feed/names.go
package feed

import "strings"

// NormalizePersonName cleans a display name scraped from the feed:
// whitespace is collapsed, separator glyphs dropped, and doubled token
// sequences (accessibility markup renders "Jane Doe Jane Doe") reduced to a
// single copy.
func NormalizePersonName(name string) string {
	if name == "" {
		return ""
	}
	cleaned := strings.Join(strings.Fields(name), " ")
	for _, sep := range []string{"•", "|", "·"} {
		cleaned = strings.ReplaceAll(cleaned, sep, " ")
	}
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	// Only exact equal-halves repetition is collapsed; a partial repeat
	// like "Jane Jane Doe" could be a real name and stays as is.
	tokens := strings.Fields(cleaned)
	n := len(tokens)
	if n >= 2 && n%2 == 0 && equalTokens(tokens[:n/2], tokens[n/2:]) {
		return strings.Join(tokens[:n/2], " ")
	}
	return cleaned
}

func equalTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
