// File: internal/browser/overlays_test.go
package browser_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/xkilldash9x/feedpilot/internal/browser"
	"github.com/xkilldash9x/feedpilot/internal/browser/browsertest"
)

func TestDismissOverlaysClosesVisibleOnes(t *testing.T) {
	page := browsertest.New()
	page.AddNode(browsertest.Node{Path: "/msg/close", Visible: true})
	page.AddNode(browsertest.Node{Path: "/toast/close", Visible: true})
	page.AddNode(browsertest.Node{Path: "/modal/close", Visible: false})
	page.Register(browser.MessagingOverlayClose.Name, "/msg/close")
	page.Register(browser.ToastDismiss.Name, "/toast/close")
	page.Register(browser.ModalDismiss.Name, "/modal/close")

	n := browser.DismissOverlays(context.Background(), page, zap.NewNop())

	assert.Equal(t, 2, n, "hidden modal close must not be clicked")
	clicks := page.CallsTo("Click")
	assert.Len(t, clicks, 2)
}

func TestDismissOverlaysDiscardsDraftDialog(t *testing.T) {
	page := browsertest.New()
	dialog := page.AddNode(browsertest.Node{Path: "/dialog", Visible: true})
	page.AddNode(browsertest.Node{Path: "/dialog/discard", Visible: true})
	page.Register(browser.DraftDialog.Name, "/dialog")
	page.RegisterWithin(dialog, browser.DraftDiscard.Name, "/dialog/discard")

	n := browser.DismissOverlays(context.Background(), page, zap.NewNop())

	assert.Equal(t, 1, n)
	clicks := page.CallsTo("Click")
	if assert.Len(t, clicks, 1) {
		assert.Equal(t, "/dialog/discard", clicks[0].Path)
	}
}

func TestDismissOverlaysToleratesClickFailure(t *testing.T) {
	page := browsertest.New()
	page.AddNode(browsertest.Node{Path: "/msg/close", Visible: true})
	page.AddNode(browsertest.Node{Path: "/toast/close", Visible: true})
	page.Register(browser.MessagingOverlayClose.Name, "/msg/close")
	page.Register(browser.ToastDismiss.Name, "/toast/close")
	page.ClickErr["/msg/close"] = errors.New("intercepted")

	n := browser.DismissOverlays(context.Background(), page, zap.NewNop())

	assert.Equal(t, 1, n, "failed dismissal is skipped, not fatal")
}

func TestDismissOverlaysEmptyPage(t *testing.T) {
	page := browsertest.New()
	n := browser.DismissOverlays(context.Background(), page, zap.NewNop())
	assert.Zero(t, n)
}
