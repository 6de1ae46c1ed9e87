// File: internal/feed/keys.go
package feed

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// snippetKeyLen bounds how much post text feeds the hash keys, so trailing
// edits to long posts do not change identity.
const snippetKeyLen = 160

// TextKey hashes the author/text pair of a post. Empty when both are empty.
// It catches reposted content that surfaces under a fresh URN.
func TextKey(author, text string) string {
	src := strings.TrimSpace(author + "|" + truncate(text, snippetKeyLen))
	if src == "|" || src == "" {
		return ""
	}
	return sha1Hex(src)
}

// IdentityKey derives the dedupe identity for a post without a URN from its
// DOM id, author and leading text.
func IdentityKey(domID, author, text string) string {
	src := strings.TrimSpace(domID + "|" + author + "|" + truncate(text, snippetKeyLen))
	return sha1Hex(src)
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
