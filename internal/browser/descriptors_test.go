// File: internal/browser/descriptors_test.go
package browser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allDescriptors() []Descriptor {
	return []Descriptor{
		FeedPost, PostActionBar, PostURNAncestor, PostURNDescendant,
		PostPermalink, PostDataIDAncestor, PostAuthorName, PostBodyText,
		PostSnippet, PostSeeMore, PostPromotedLabel, BarPostRoot,
		LikeButton, CommentButton, CommentEditor, CommentSubmit, CommentItems,
		MentionSuggestionItems, MentionSuggestionContainer,
		MentionFirstSuggestion, MentionEntity,
		LoginUsername, LoginPassword, LoginSubmit, LoginChallenge, FeedIdentity,
		ComposerTrigger, ComposerDialog, ComposerEditor, ComposerSubmit,
		MediaButton, MediaFileInput, MediaPreview,
		MessagingOverlayClose, ToastDismiss, ModalDismiss,
		DraftDialog, DraftDiscard,
	}
}

func TestDescriptorNamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range allDescriptors() {
		require.NotEmpty(t, d.Name)
		assert.False(t, seen[d.Name], "duplicate descriptor name %q", d.Name)
		seen[d.Name] = true
	}
}

func TestDescriptorsHaveStrategies(t *testing.T) {
	for _, d := range allDescriptors() {
		assert.NotEmpty(t, d.Strategies, "%s has no strategies", d.Name)
		for _, s := range d.Strategies {
			assert.NotEmpty(t, strings.TrimSpace(s), "%s has a blank strategy", d.Name)
		}
	}
}

func TestJSStringEscaping(t *testing.T) {
	cases := map[string]string{
		"plain":                   `"plain"`,
		`with "quotes"`:           `"with \"quotes\""`,
		"//a[@href='x']":          `"//a[@href='x']"`,
		"line\nbreak":             `"line\nbreak"`,
		`back\slash`:              `"back\\slash"`,
	}
	for in, want := range cases {
		assert.Equal(t, want, jsString(in))
	}
}

func TestElementHandles(t *testing.T) {
	el := NewElement("/html/body[1]/div[2]")
	assert.Equal(t, "/html/body[1]/div[2]", el.Path())
	assert.False(t, el.IsZero())
	assert.True(t, Element{}.IsZero())
}
