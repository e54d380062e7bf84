package browser

import (
	"context"
	"time"

	"linkedin-scraper/internal/dom"
	"linkedin-scraper/internal/models"
)

// Page is a single live browser tab. Element reads happen on Snapshot
// documents; the live page is only driven for navigation, waits, forms and
// cookies.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	CurrentURL(ctx context.Context) (string, error)

	// WaitFor blocks until loc is present or timeout elapses. A timeout is
	// reported as ErrWaitTimeout.
	WaitFor(ctx context.Context, loc dom.Locator, timeout time.Duration) error
	Exists(ctx context.Context, loc dom.Locator) (bool, error)

	SendKeys(ctx context.Context, loc dom.Locator, text string) error
	Click(ctx context.Context, loc dom.Locator) error
	Submit(ctx context.Context, loc dom.Locator) error
	Evaluate(ctx context.Context, script string, res any) error

	Cookies(ctx context.Context) ([]models.Cookie, error)
	AddCookie(ctx context.Context, cookie models.Cookie) error

	Snapshot(ctx context.Context) (*dom.Document, error)

	// Close releases the tab and its browser process. Safe to call twice.
	Close() error
}

// Launcher opens fresh, isolated pages
type Launcher interface {
	Open(ctx context.Context) (Page, error)
}

// Scripts shared by the scrapers to trigger lazy rendering of long lists
const (
	ScrollToHalf   = `window.scrollTo(0, Math.ceil(document.body.scrollHeight/2));`
	ScrollToBottom = `window.scrollTo(0, document.body.scrollHeight);`
)
