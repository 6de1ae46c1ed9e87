// File: internal/browser/descriptors.go
package browser

// Named node descriptors for the target platform. Fakes in tests dispatch on
// Descriptor.Name, so names are treated as a stable contract even when the
// XPath strategies underneath them get reshuffled.

// Feed and post structure.
var (
	FeedPost = Descriptor{
		Name: "feed.post",
		Strategies: []string{
			"//div[@data-id]",
			"//div[contains(@class,'fie-impression-container')]",
			"//div[contains(@class,'feed-shared-update-v2__control-menu-container')]/div[contains(@class,'fie-impression-container')]",
			"//div[contains(@class,'feed-shared-update-v2')]",
		},
	}

	PostActionBar = Descriptor{
		Name: "post.action_bar",
		Strategies: []string{
			".//div[contains(@class,'feed-shared-social-action-bar')]",
		},
	}

	PostURNAncestor = Descriptor{
		Name: "post.urn_ancestor",
		Strategies: []string{
			"ancestor-or-self::*[@data-urn or @data-entity-urn][1]",
		},
	}

	PostURNDescendant = Descriptor{
		Name: "post.urn_descendant",
		Strategies: []string{
			".//*[@data-urn or @data-entity-urn or @data-id]",
		},
	}

	PostPermalink = Descriptor{
		Name: "post.permalink",
		Strategies: []string{
			".//a[contains(@href,'/feed/update/') or contains(@href,'activity:')]",
		},
	}

	PostDataIDAncestor = Descriptor{
		Name: "post.data_id_ancestor",
		Strategies: []string{
			"ancestor-or-self::*[@data-id][1]",
		},
	}

	PostAuthorName = Descriptor{
		Name: "post.author_name",
		Strategies: []string{
			".//span[contains(@class,'update-components-actor__title')]//span[normalize-space() and not(contains(@class,'visually-hidden'))]",
			".//div[contains(@class,'update-components-actor__container')]//a[contains(@href,'/in/')][normalize-space()]",
			".//a[contains(@class,'update-components-actor__meta-link')]//*[normalize-space() and not(contains(@class,'visually-hidden'))]",
		},
	}

	PostBodyText = Descriptor{
		Name: "post.body_text",
		Strategies: []string{
			".//div[contains(@class,'update-components-text')]//*[normalize-space()]",
			".//div[contains(@class,'feed-shared-update-v2__description')]//*[normalize-space()]",
			".//span[contains(@class,'break-words') and normalize-space()]",
		},
	}

	PostSnippet = Descriptor{
		Name: "post.snippet",
		Strategies: []string{
			".//div[contains(@class,'update-components-text') or contains(@class,'feed-shared-inline-show-more-text')]//*[normalize-space()]",
		},
	}

	PostSeeMore = Descriptor{
		Name: "post.see_more",
		Strategies: []string{
			".//button[contains(@class,'see-more')]",
			".//button[contains(normalize-space(.),'see more')]",
		},
	}

	PostPromotedLabel = Descriptor{
		Name: "post.promoted_label",
		Strategies: []string{
			".//*[contains(translate(normalize-space(.),'PROMOTED','promoted'),'promoted')]",
		},
	}

	BarPostRoot = Descriptor{
		Name: "bar.post_root",
		Strategies: []string{
			".//ancestor::div[contains(@class,'feed-shared-update-v2')][1]",
			".//ancestor::div[contains(@data-urn,'activity')][1]",
			".//ancestor::article[1]",
		},
	}
)

// Social action controls.
var (
	LikeButton = Descriptor{
		Name: "post.like_button",
		Strategies: []string{
			".//button[contains(@class,'react-button__trigger')]",
			".//button[@aria-label='React Like']",
			".//button[.//span[normalize-space()='Like']]",
		},
	}

	CommentButton = Descriptor{
		Name: "post.comment_button",
		Strategies: []string{
			".//button[contains(@class,'comment-button')]",
			".//button[@aria-label='Comment']",
			".//button[.//span[normalize-space()='Comment']]",
		},
	}

	CommentEditor = Descriptor{
		Name: "post.comment_editor",
		Strategies: []string{
			".//div[@contenteditable='true' and contains(@class,'comments')]",
			".//div[@contenteditable='true' and contains(@role,'textbox')]",
			".//form[contains(@class,'comments')]//div[@contenteditable='true']",
			".//div[@contenteditable='true']",
		},
	}

	CommentSubmit = Descriptor{
		Name: "post.comment_submit",
		Strategies: []string{
			"//button[contains(@class,'comments-comment-box__submit-button')]",
			"//button[.//span[normalize-space()='Post']]",
			"//button[@data-control-name='submit_comment']",
		},
	}

	CommentItems = Descriptor{
		Name: "post.comment_items",
		Strategies: []string{
			".//*[contains(@class,'comments-comment-item')]//*[normalize-space()]",
		},
	}
)

// Mention typeahead.
var (
	MentionSuggestionItems = Descriptor{
		Name: "mention.suggestion_items",
		Strategies: []string{
			"//div[contains(@class,'typeahead') and contains(@class,'artdeco')]//li",
			"//div[contains(@class,'mentions') and contains(@class,'suggest')]//li",
			"//div[contains(@class,'ember-view') and contains(@class,'typeahead')]//li",
			"//div[contains(@class,'editor-typeahead-fetch')]//*[self::li or self::button or self::a]",
			"//div[contains(@role,'listbox')]//li",
			"//ul[contains(@class,'suggest') or contains(@class,'results')]//li",
		},
	}

	MentionSuggestionContainer = Descriptor{
		Name: "mention.container",
		Strategies: []string{
			"//div[contains(@class,'editor-typeahead-fetch')]",
			"//div[contains(@class,'typeahead') and contains(@class,'artdeco')]",
			"//div[contains(@class,'mentions') and contains(@class,'suggest')]",
			"//div[contains(@role,'listbox')]",
		},
	}

	MentionFirstSuggestion = Descriptor{
		Name: "mention.first_suggestion",
		Strategies: []string{
			".//div[contains(@class,'basic-typeahead__selectable') and @role='option'][1]",
			".//*[@role='option'][1]",
			".//li[1]",
		},
	}

	MentionEntity = Descriptor{
		Name: "mention.entity",
		Strategies: []string{
			".//*[contains(@class,'ql-mention')]",
			".//*[contains(@class,'mention')]",
			".//*[contains(@class,'entity')]",
		},
	}
)

// Login page.
var (
	LoginUsername = Descriptor{
		Name: "login.username",
		Strategies: []string{
			"//input[@id='username']",
			"//input[@name='session_key']",
			"//input[@autocomplete='username']",
		},
	}

	LoginPassword = Descriptor{
		Name: "login.password",
		Strategies: []string{
			"//input[@id='password']",
			"//input[@name='session_password']",
			"//input[@autocomplete='current-password']",
		},
	}

	LoginSubmit = Descriptor{
		Name: "login.submit",
		Strategies: []string{
			"//button[@type='submit']",
			"//button[contains(@class,'sign-in-form__submit')]",
		},
	}

	LoginChallenge = Descriptor{
		Name: "login.challenge",
		Strategies: []string{
			"//input[@id='input__phone_verification_pin']",
		},
	}

	FeedIdentity = Descriptor{
		Name: "feed.identity",
		Strategies: []string{
			"//div[contains(@class,'feed-identity-module')]",
			"//button[contains(.,'Start a post')]",
			"//div[contains(@class,'share-box-feed-entry__avatar')]",
		},
	}
)

// Post composer.
var (
	ComposerTrigger = Descriptor{
		Name: "composer.trigger",
		Strategies: []string{
			"//button[contains(@class,'share-box-feed-entry__trigger')]",
			"//button[contains(@aria-label,'Start a post')]",
			"//div[contains(@class,'share-box-feed-entry__trigger')]",
			"//span[text()='Start a post']/ancestor::button",
			"//button[contains(text(),'Start a post')]",
		},
	}

	ComposerDialog = Descriptor{
		Name: "composer.dialog",
		Strategies: []string{
			"//div[@role='dialog' and contains(@class,'share-creation-state')]",
			"//div[@role='dialog' and contains(@class,'share-box-modal')]",
			"//div[contains(@class,'share-box-modal')]",
		},
	}

	ComposerEditor = Descriptor{
		Name: "composer.editor",
		Strategies: []string{
			"//div[contains(@class,'share-creation-state__editor-container')]//div[@role='textbox']",
			"//div[contains(@class,'ql-editor')]",
			"//div[contains(@role,'textbox')]",
			"//div[@data-placeholder='What do you want to talk about?']",
		},
	}

	ComposerSubmit = Descriptor{
		Name: "composer.submit",
		Strategies: []string{
			"//button[normalize-space(.)='Post']",
			"//span[normalize-space(.)='Post']/parent::button",
			"//button[contains(@aria-label,'Post')]",
			"//button[contains(@class,'share-actions__primary-action')]",
		},
	}

	MediaButton = Descriptor{
		Name: "composer.media_button",
		Strategies: []string{
			"//button[contains(@aria-label,'Add media')]",
			"//button[contains(normalize-space(.),'Add media')]",
			"//button[contains(@aria-label,'photo')]",
			"//button[contains(@title,'Add a photo')]",
			"//button[.//*[local-name()='svg' and contains(@data-test-icon,'image')]]",
		},
	}

	MediaFileInput = Descriptor{
		Name: "composer.media_file_input",
		Strategies: []string{
			"//input[@type='file']",
		},
	}

	MediaPreview = Descriptor{
		Name: "composer.media_preview",
		Strategies: []string{
			"//div[contains(@class,'media-editor')]//img",
			"//div[contains(@class,'image') or contains(@class,'media') or contains(@class,'preview')]//img",
			"//img[contains(@src,'data:') or contains(@src,'media')]",
		},
	}
)

// Overlays and dialogs that block interaction.
var (
	MessagingOverlayClose = Descriptor{
		Name: "overlay.messaging_close",
		Strategies: []string{
			"//button[contains(@class,'msg-overlay-bubble-header__control--close')]",
		},
	}

	ToastDismiss = Descriptor{
		Name: "overlay.toast_dismiss",
		Strategies: []string{
			"//button[contains(@class,'artdeco-toast-item__dismiss')]",
		},
	}

	ModalDismiss = Descriptor{
		Name: "overlay.modal_dismiss",
		Strategies: []string{
			"//button[contains(@class,'artdeco-modal__dismiss')]",
			"//button[@aria-label='Close' or @aria-label='Dismiss' or contains(@class,'close-btn')]",
		},
	}

	DraftDialog = Descriptor{
		Name: "overlay.draft_dialog",
		Strategies: []string{
			"//div[contains(@class,'save-draft-dialog')]",
			"//div[contains(@class,'unsaved-detour-dialog')]",
			"//div[contains(@class,'artdeco-modal') and (.//button[normalize-space(.)='Save as draft'] or .//button[normalize-space(.)='Discard'])]",
		},
	}

	DraftDiscard = Descriptor{
		Name: "overlay.draft_discard",
		Strategies: []string{
			".//button[normalize-space(.)='Discard']",
		},
	}
)
