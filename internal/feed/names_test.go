// File: internal/feed/names_test.go
package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePersonName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Jane Doe", "Jane Doe"},
		{"collapses whitespace", "  Jane \t Doe ", "Jane Doe"},
		{"strips separators", "Jane Doe • 3rd", "Jane Doe 3rd"},
		{"doubled full name", "Jane Doe Jane Doe", "Jane Doe"},
		{"doubled single token", "Jane Jane", "Jane"},
		{"doubled three tokens", "Ana Maria Silva Ana Maria Silva", "Ana Maria Silva"},
		{"not doubled", "Jane Doe John Doe", "Jane Doe John Doe"},
		{"partial repeat kept", "Jane Jane Doe", "Jane Jane Doe"},
		{"odd token count kept", "Jane Doe Jane", "Jane Doe Jane"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizePersonName(tc.in))
		})
	}
}

func TestTextKey(t *testing.T) {
	assert.Empty(t, TextKey("", ""))
	assert.NotEmpty(t, TextKey("Jane Doe", "hello world"))
	assert.Equal(t, TextKey("Jane", "same"), TextKey("Jane", "same"))
	assert.NotEqual(t, TextKey("Jane", "a"), TextKey("Jane", "b"))

	// Only the first 160 bytes of text participate.
	long := make([]byte, 400)
	for i := range long {
		long[i] = 'x'
	}
	base := string(long)
	assert.Equal(t, TextKey("Jane", base), TextKey("Jane", base+"tail"))
}

func TestIdentityKey(t *testing.T) {
	a := IdentityKey("post-1", "Jane", "hello")
	b := IdentityKey("post-2", "Jane", "hello")
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 40)
}

func TestCommentSignature(t *testing.T) {
	assert.Empty(t, CommentSignature(""))
	assert.Empty(t, CommentSignature("short"), "under eight chars yields no signature")
	assert.Equal(t, "great insight, thanks for sharin", CommentSignature("Great   insight,\nthanks for sharing!"))
	// Punctuation outside the allowed set is stripped.
	assert.Equal(t, CommentSignature("nice work everyone"), CommentSignature("nice ~work~ everyone"))
	// Only the first 32 characters participate.
	long := "abcdefghijklmnopqrstuvwxyz abcdefghijklmnop"
	assert.Len(t, CommentSignature(long), 32)
}
