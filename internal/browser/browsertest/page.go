// Package browsertest provides an in-memory browser.Page for tests.
package browsertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"linkedin-scraper/internal/browser"
	"linkedin-scraper/internal/dom"
	"linkedin-scraper/internal/models"
)

const blank = `<html><head></head><body></body></html>`

// Page serves canned HTML per URL and records every interaction
type Page struct {
	mu sync.Mutex

	routes  map[string]string
	url     string
	doc     *dom.Document
	cookies []models.Cookie
	closed  bool

	Navigations []string
	Typed       map[string]string
	Clicks      []string
	Submits     []string
	Scripts     []string

	// OnNavigate runs after Navigate has rendered the route for url.
	OnNavigate func(p *Page, url string)
	// OnSubmit runs after Submit; tests use it to swap the current page.
	OnSubmit func(p *Page, loc dom.Locator)
	// OnClick runs after Click.
	OnClick func(p *Page, loc dom.Locator)
	// OnReload runs after Reload.
	OnReload func(p *Page)
	// RejectCookie makes AddCookie fail for matching cookies.
	RejectCookie func(c models.Cookie) bool
	// ExistsErr, when it returns an error, makes Exists and WaitFor fail
	// for loc with that error.
	ExistsErr func(loc dom.Locator) error
	// SnapshotErr, when it returns an error, makes Snapshot fail.
	SnapshotErr func() error
}

// NewPage returns a page that serves routes keyed by exact URL. Unknown
// URLs render an empty document.
func NewPage(routes map[string]string) *Page {
	if routes == nil {
		routes = map[string]string{}
	}
	p := &Page{routes: routes, Typed: map[string]string{}}
	p.doc, _ = dom.ParseString(blank, "")
	return p
}

// Route registers or replaces the HTML served for url.
func (p *Page) Route(url, html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes[url] = html
}

// Show replaces the current document without navigating.
func (p *Page) Show(html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.render(html)
}

func (p *Page) render(html string) {
	doc, err := dom.ParseString(html, p.url)
	if err != nil {
		panic(err)
	}
	p.doc = doc
}

// Jar returns a copy of the cookies currently set on the page.
func (p *Page) Jar() []models.Cookie {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Cookie(nil), p.cookies...)
}

// SetCookies replaces the cookie jar.
func (p *Page) SetCookies(cookies []models.Cookie) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cookies = append([]models.Cookie(nil), cookies...)
}

// Closed reports whether Close was called.
func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Page) check(ctx context.Context) error {
	if p.closed {
		return fmt.Errorf("page closed")
	}
	return ctx.Err()
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	if err := p.check(ctx); err != nil {
		p.mu.Unlock()
		return err
	}
	p.url = url
	p.Navigations = append(p.Navigations, url)
	html, ok := p.routes[url]
	if !ok {
		html = blank
	}
	p.render(html)
	hook := p.OnNavigate
	p.mu.Unlock()

	if hook != nil {
		hook(p, url)
	}
	return nil
}

func (p *Page) Reload(ctx context.Context) error {
	p.mu.Lock()
	if err := p.check(ctx); err != nil {
		p.mu.Unlock()
		return err
	}
	if html, ok := p.routes[p.url]; ok {
		p.render(html)
	}
	hook := p.OnReload
	p.mu.Unlock()

	if hook != nil {
		hook(p)
	}
	return nil
}

func (p *Page) CurrentURL(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, p.check(ctx)
}

func (p *Page) WaitFor(ctx context.Context, loc dom.Locator, timeout time.Duration) error {
	ok, err := p.Exists(ctx, loc)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s after %s", browser.ErrWaitTimeout, loc, timeout)
	}
	return nil
}

func (p *Page) Exists(ctx context.Context, loc dom.Locator) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.check(ctx); err != nil {
		return false, err
	}
	if p.ExistsErr != nil {
		if err := p.ExistsErr(loc); err != nil {
			return false, err
		}
	}
	return p.doc.Has(loc), nil
}

func (p *Page) require(ctx context.Context, loc dom.Locator) error {
	if err := p.check(ctx); err != nil {
		return err
	}
	if !p.doc.Has(loc) {
		return fmt.Errorf("no element matches %s", loc)
	}
	return nil
}

func (p *Page) SendKeys(ctx context.Context, loc dom.Locator, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.require(ctx, loc); err != nil {
		return err
	}
	p.Typed[loc.Query] = text
	return nil
}

func (p *Page) Click(ctx context.Context, loc dom.Locator) error {
	p.mu.Lock()
	if err := p.require(ctx, loc); err != nil {
		p.mu.Unlock()
		return err
	}
	p.Clicks = append(p.Clicks, loc.Query)
	hook := p.OnClick
	p.mu.Unlock()

	if hook != nil {
		hook(p, loc)
	}
	return nil
}

func (p *Page) Submit(ctx context.Context, loc dom.Locator) error {
	p.mu.Lock()
	if err := p.require(ctx, loc); err != nil {
		p.mu.Unlock()
		return err
	}
	p.Submits = append(p.Submits, loc.Query)
	hook := p.OnSubmit
	p.mu.Unlock()

	if hook != nil {
		hook(p, loc)
	}
	return nil
}

func (p *Page) Evaluate(ctx context.Context, script string, res any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.check(ctx); err != nil {
		return err
	}
	p.Scripts = append(p.Scripts, script)
	return nil
}

func (p *Page) Cookies(ctx context.Context) ([]models.Cookie, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.check(ctx); err != nil {
		return nil, err
	}
	return append([]models.Cookie(nil), p.cookies...), nil
}

func (p *Page) AddCookie(ctx context.Context, cookie models.Cookie) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.check(ctx); err != nil {
		return err
	}
	if p.RejectCookie != nil && p.RejectCookie(cookie) {
		return fmt.Errorf("cookie %s rejected", cookie.Name)
	}
	p.cookies = append(p.cookies, cookie)
	return nil
}

func (p *Page) Snapshot(ctx context.Context) (*dom.Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.check(ctx); err != nil {
		return nil, err
	}
	if p.SnapshotErr != nil {
		if err := p.SnapshotErr(); err != nil {
			return nil, err
		}
	}
	return p.doc, nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Launcher hands out pages built by New and remembers them
type Launcher struct {
	New func() *Page
	Err error

	mu     sync.Mutex
	Opened []*Page
}

func (l *Launcher) Open(ctx context.Context) (browser.Page, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page := l.New()
	l.mu.Lock()
	l.Opened = append(l.Opened, page)
	l.mu.Unlock()
	return page, nil
}

// Count returns how many pages were opened.
func (l *Launcher) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Opened)
}
