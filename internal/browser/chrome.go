package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"linkedin-scraper/internal/dom"
	"linkedin-scraper/internal/models"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// ChromeOptions configures the Chrome processes started by ChromeLauncher
type ChromeOptions struct {
	Headless          bool
	UserAgent         string
	WindowWidth       int
	WindowHeight      int
	NavigationsPerSec float64
	// PageLoadTimeout bounds each Navigate and Reload. Zero leaves them
	// bounded only by the caller's ctx.
	PageLoadTimeout time.Duration
}

// ChromeLauncher starts one Chrome process per page through chromedp
type ChromeLauncher struct {
	opts    ChromeOptions
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewChromeLauncher creates a launcher. All pages it opens share one
// navigation rate limit.
func NewChromeLauncher(opts ChromeOptions, logger *zap.Logger) *ChromeLauncher {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.WindowWidth == 0 || opts.WindowHeight == 0 {
		opts.WindowWidth, opts.WindowHeight = 1920, 1080
	}
	limit := rate.Inf
	if opts.NavigationsPerSec > 0 {
		limit = rate.Limit(opts.NavigationsPerSec)
	}
	return &ChromeLauncher{
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.Named("chrome"),
	}
}

// Open starts a browser and returns its first tab. The browser is torn down
// when ctx is cancelled or the page is closed.
func (l *ChromeLauncher) Open(ctx context.Context) (Page, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.WindowSize(l.opts.WindowWidth, l.opts.WindowHeight),
		chromedp.UserAgent(l.opts.UserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	sugar := l.logger.Sugar()
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Debugf),
	)

	// The first Run starts the browser process.
	if err := chromedp.Run(tabCtx, network.Enable()); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &ChromePage{
		ctx: tabCtx,
		cancel: func() {
			tabCancel()
			allocCancel()
		},
		limiter:     l.limiter,
		loadTimeout: l.opts.PageLoadTimeout,
		logger:      l.logger,
	}, nil
}

// ChromePage is a Page backed by a chromedp tab
type ChromePage struct {
	ctx         context.Context
	cancel      context.CancelFunc
	limiter     *rate.Limiter
	loadTimeout time.Duration
	logger      *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

// run executes actions on the tab while honouring the caller's ctx
// cancellation and deadline.
func (p *ChromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func queryOption(loc dom.Locator) chromedp.QueryOption {
	if loc.By == dom.ByXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func (p *ChromePage) Navigate(ctx context.Context, url string) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	p.logger.Debug("navigate", zap.String("url", url))
	loadCtx, cancel := boundedContext(ctx, p.loadTimeout)
	defer cancel()
	if err := p.run(loadCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (p *ChromePage) Reload(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	loadCtx, cancel := boundedContext(ctx, p.loadTimeout)
	defer cancel()
	return p.run(loadCtx, chromedp.Reload())
}

// boundedContext applies timeout to ctx unless it is zero or ctx already
// ends sooner
func boundedContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= timeout {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func (p *ChromePage) CurrentURL(ctx context.Context) (string, error) {
	var url string
	err := p.run(ctx, chromedp.Location(&url))
	return url, err
}

func (p *ChromePage) WaitFor(ctx context.Context, loc dom.Locator, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := p.run(waitCtx, chromedp.WaitReady(loc.Query, queryOption(loc)))
	if err != nil && ctx.Err() == nil && errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %s", ErrWaitTimeout, loc, timeout)
	}
	return err
}

func (p *ChromePage) Exists(ctx context.Context, loc dom.Locator) (bool, error) {
	query, err := json.Marshal(loc.Query)
	if err != nil {
		return false, err
	}
	script := fmt.Sprintf(`document.querySelector(%s) !== null`, query)
	if loc.By == dom.ByXPath {
		script = fmt.Sprintf(`document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue !== null`, query)
	}
	var exists bool
	if err := p.run(ctx, chromedp.Evaluate(script, &exists)); err != nil {
		return false, err
	}
	return exists, nil
}

func (p *ChromePage) SendKeys(ctx context.Context, loc dom.Locator, text string) error {
	return p.run(ctx,
		chromedp.WaitVisible(loc.Query, queryOption(loc)),
		chromedp.Clear(loc.Query, queryOption(loc)),
		chromedp.SendKeys(loc.Query, text, queryOption(loc)),
	)
}

func (p *ChromePage) Click(ctx context.Context, loc dom.Locator) error {
	return p.run(ctx, chromedp.Click(loc.Query, queryOption(loc)))
}

func (p *ChromePage) Submit(ctx context.Context, loc dom.Locator) error {
	return p.run(ctx, chromedp.Submit(loc.Query, queryOption(loc)))
}

func (p *ChromePage) Evaluate(ctx context.Context, script string, res any) error {
	return p.run(ctx, chromedp.Evaluate(script, res))
}

func (p *ChromePage) Cookies(ctx context.Context) ([]models.Cookie, error) {
	var raw []*network.Cookie
	err := p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		raw, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}

	cookies := make([]models.Cookie, 0, len(raw))
	for _, c := range raw {
		cookie := models.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: string(c.SameSite),
		}
		if !c.Session {
			cookie.Expiry = c.Expires
		}
		cookies = append(cookies, cookie)
	}
	return cookies, nil
}

func (p *ChromePage) AddCookie(ctx context.Context, cookie models.Cookie) error {
	return p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		params := network.SetCookie(cookie.Name, cookie.Value).
			WithDomain(cookie.Domain).
			WithPath(cookie.Path).
			WithSecure(cookie.Secure).
			WithHTTPOnly(cookie.HTTPOnly)
		if cookie.SameSite != "" {
			params = params.WithSameSite(network.CookieSameSite(cookie.SameSite))
		}
		if cookie.Expiry > 0 {
			expires := cdp.TimeSinceEpoch(time.Unix(int64(cookie.Expiry), 0))
			params = params.WithExpires(&expires)
		}
		return params.Do(ctx)
	}))
}

func (p *ChromePage) Snapshot(ctx context.Context) (*dom.Document, error) {
	var url, html string
	err := p.run(ctx,
		chromedp.Location(&url),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot page: %w", err)
	}
	return dom.ParseString(html, url)
}

func (p *ChromePage) Close() error {
	p.closeOnce.Do(func() {
		err := chromedp.Cancel(p.ctx)
		p.cancel()
		if err != nil && !errors.Is(err, context.Canceled) {
			p.closeErr = err
		}
	})
	return p.closeErr
}
