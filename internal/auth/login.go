package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"linkedin-scraper/internal/browser"
	"linkedin-scraper/internal/dom"
	"linkedin-scraper/internal/models"
	"linkedin-scraper/internal/storage"
)

const (
	SiteURL  = "https://www.linkedin.com"
	LoginURL = "https://www.linkedin.com/login"

	// CheckpointURL prefixes the verification pages shown after a password
	// submit (device confirmation, captcha, PIN)
	CheckpointURL = "https://www.linkedin.com/checkpoint/"
)

// AuthenticatedMarker is only rendered for signed-in members
var AuthenticatedMarker = dom.CSS(".global-nav__primary-link")

var (
	usernameInput  = dom.CSS("#username")
	passwordInput  = dom.CSS("#password")
	rememberMe     = dom.CSS("label[for='rememberMeOptIn-checkbox']")
	rememberPrompt = dom.CSS("#remember-me-prompt__form-primary")
)

// Options bounds the waits of the sign-in flow
type Options struct {
	CookieProbeTimeout time.Duration
	LoginTimeout       time.Duration
	ElementTimeout     time.Duration
	PollInterval       time.Duration
}

// OptionsFromConfig extracts the sign-in timeouts from cfg
func OptionsFromConfig(cfg models.Config) Options {
	return Options{
		CookieProbeTimeout: cfg.CookieProbeTimeout,
		LoginTimeout:       cfg.LoginTimeout,
		ElementTimeout:     cfg.ElementTimeout,
		PollInterval:       cfg.PollInterval,
	}
}

// Authenticator turns an account into a signed-in Session, reusing stored
// cookies when they are still valid
type Authenticator struct {
	launcher browser.Launcher
	store    storage.SessionStore
	opts     Options
	logger   *zap.Logger
}

// NewAuthenticator creates an Authenticator
func NewAuthenticator(launcher browser.Launcher, store storage.SessionStore, opts Options, logger *zap.Logger) *Authenticator {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	return &Authenticator{
		launcher: launcher,
		store:    store,
		opts:     opts,
		logger:   logger.Named("auth"),
	}
}

// Establish opens a page and signs it in as account. Stored cookies are tried
// first unless forceFresh is set; otherwise, or when they no longer work, the
// login form is submitted once and the resulting cookies are saved. On error
// the page has already been closed.
func (a *Authenticator) Establish(ctx context.Context, account models.Account, forceFresh bool) (*Session, error) {
	logger := a.logger.With(zap.String("account", account.Email))
	start := time.Now()

	page, err := a.launcher.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open browser: %w", err)
	}

	if !forceFresh {
		ok, err := a.tryCookies(ctx, page, account, logger)
		if err != nil && ctx.Err() != nil {
			page.Close()
			return nil, ctx.Err()
		}
		if err != nil {
			logger.Warn("cookie sign-in failed", zap.Error(err))
		}
		if ok {
			logger.Info("signed in with saved cookies")
			loginAttempts.WithLabelValues(string(MethodCookies), "success").Inc()
			loginDuration.WithLabelValues(string(MethodCookies)).Observe(time.Since(start).Seconds())
			return NewSession(page, account, MethodCookies), nil
		}
		loginAttempts.WithLabelValues(string(MethodCookies), "failure").Inc()
		logger.Info("cookie sign-in unavailable, using credentials")
	}

	if err := a.loginWithCredentials(ctx, page, account, logger); err != nil {
		page.Close()
		loginAttempts.WithLabelValues(string(MethodCredentials), "failure").Inc()
		return nil, err
	}
	loginAttempts.WithLabelValues(string(MethodCredentials), "success").Inc()
	loginDuration.WithLabelValues(string(MethodCredentials)).Observe(time.Since(start).Seconds())
	logger.Info("signed in with credentials")

	a.saveCookies(ctx, page, account, logger)
	return NewSession(page, account, MethodCredentials), nil
}

// tryCookies injects stored cookies and reports whether the page is signed
// in afterwards
func (a *Authenticator) tryCookies(ctx context.Context, page browser.Page, account models.Account, logger *zap.Logger) (bool, error) {
	cookies, found, err := a.store.Load(ctx, account.Email)
	if err != nil {
		return false, err
	}
	if !found {
		logger.Info("no saved cookies")
		return false, nil
	}

	// Cookies can only be set once the page is on the site's domain.
	if err := page.Navigate(ctx, SiteURL); err != nil {
		return false, err
	}

	injected := 0
	for _, cookie := range cookies {
		if err := page.AddCookie(ctx, cookie.Stripped()); err != nil {
			logger.Warn("failed to add cookie", zap.String("cookie", cookie.Name), zap.Error(err))
			continue
		}
		injected++
	}
	logger.Info("loaded saved cookies", zap.Int("loaded", len(cookies)), zap.Int("injected", injected))

	if err := page.Reload(ctx); err != nil {
		return false, err
	}

	err = page.WaitFor(ctx, AuthenticatedMarker, a.opts.CookieProbeTimeout)
	if errors.Is(err, browser.ErrWaitTimeout) {
		logger.Info("saved cookies no longer sign in")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (a *Authenticator) loginWithCredentials(ctx context.Context, page browser.Page, account models.Account, logger *zap.Logger) error {
	if err := page.Navigate(ctx, LoginURL); err != nil {
		return fmt.Errorf("%w: %w", models.ErrAuthentication, err)
	}
	if err := page.WaitFor(ctx, usernameInput, a.opts.ElementTimeout); err != nil {
		return fmt.Errorf("%w: login form did not load: %w", models.ErrAuthentication, err)
	}

	if err := page.SendKeys(ctx, usernameInput, account.Email); err != nil {
		return fmt.Errorf("%w: %w", models.ErrAuthentication, err)
	}
	if err := page.SendKeys(ctx, passwordInput, account.Password); err != nil {
		return fmt.Errorf("%w: %w", models.ErrAuthentication, err)
	}

	if ok, _ := page.Exists(ctx, rememberMe); ok {
		if err := page.Click(ctx, rememberMe); err != nil {
			logger.Warn("failed to tick remember me", zap.Error(err))
		}
	}

	if err := page.Submit(ctx, passwordInput); err != nil {
		return fmt.Errorf("%w: %w", models.ErrAuthentication, err)
	}

	promptSubmitted := false
	atCheckpoint := false
	err := browser.WaitUntil(ctx, a.opts.LoginTimeout, a.opts.PollInterval, func(ctx context.Context) (bool, error) {
		// Probes fail while the form submit is still navigating away.
		signedIn, err := page.Exists(ctx, AuthenticatedMarker)
		if err != nil {
			logger.Debug("sign-in probe failed", zap.Error(err))
			return false, nil
		}
		if signedIn {
			return true, nil
		}

		if url, err := page.CurrentURL(ctx); err == nil && strings.HasPrefix(url, CheckpointURL) && !atCheckpoint {
			atCheckpoint = true
			logger.Info("sign-in stopped at a checkpoint", zap.String("url", url))
		}

		if promptSubmitted {
			return false, nil
		}
		if ok, _ := page.Exists(ctx, rememberPrompt); ok {
			promptSubmitted = true
			logger.Info("submitting remember-device prompt")
			if err := page.Submit(ctx, rememberPrompt); err != nil {
				logger.Warn("failed to submit remember-device prompt", zap.Error(err))
			}
		}
		return false, nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, browser.ErrWaitTimeout) && atCheckpoint:
		return fmt.Errorf("%w: sign-in for %s stuck at a checkpoint after %s", models.ErrAuthentication, account.Email, a.opts.LoginTimeout)
	case errors.Is(err, browser.ErrWaitTimeout):
		return fmt.Errorf("%w: sign-in for %s not verified within %s", models.ErrAuthentication, account.Email, a.opts.LoginTimeout)
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return fmt.Errorf("%w: %w", models.ErrAuthentication, err)
	}
}

func (a *Authenticator) saveCookies(ctx context.Context, page browser.Page, account models.Account, logger *zap.Logger) {
	cookies, err := page.Cookies(ctx)
	if err != nil {
		logger.Error("failed to read cookies", zap.Error(err))
		return
	}
	if err := a.store.Save(ctx, account.Email, cookies); err != nil {
		logger.Error("failed to save cookies", zap.Error(err))
		return
	}
	logger.Info("saved cookies", zap.Int("count", len(cookies)))
}
