// File: internal/browser/overlays.go
package browser

import (
	"context"

	"go.uber.org/zap"
)

// overlayDescriptors lists the dismiss controls swept before interacting
// with the feed, in the order they tend to stack.
var overlayDescriptors = []Descriptor{
	MessagingOverlayClose,
	ToastDismiss,
	ModalDismiss,
}

// DismissOverlays closes any messaging bubbles, toasts and modals that
// would intercept clicks. Returns how many overlays were dismissed. Errors
// on individual overlays are logged and skipped; a half-dismissed page is
// still better than an aborted run.
func DismissOverlays(ctx context.Context, page Page, logger *zap.Logger) int {
	dismissed := 0
	for _, d := range overlayDescriptors {
		els, err := page.FindAll(ctx, d)
		if err != nil {
			logger.Debug("Overlay sweep query failed.", zap.String("overlay", d.Name), zap.Error(err))
			continue
		}
		for _, el := range els {
			visible, err := page.IsVisible(ctx, el)
			if err != nil || !visible {
				continue
			}
			if err := page.Click(ctx, el); err != nil {
				logger.Debug("Failed to dismiss overlay.", zap.String("overlay", d.Name), zap.Error(err))
				continue
			}
			dismissed++
		}
	}

	// Draft dialogs need their Discard button, not a dismiss cross.
	if dialog, err := page.FindFirst(ctx, DraftDialog); err == nil {
		if discard, err := page.FindWithin(ctx, dialog, DraftDiscard); err == nil {
			if err := page.Click(ctx, discard); err == nil {
				dismissed++
			}
		}
	}

	if dismissed > 0 {
		logger.Debug("Dismissed blocking overlays.", zap.Int("count", dismissed))
	}
	return dismissed
}
