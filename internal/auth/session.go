package auth

import (
	"sync"

	"linkedin-scraper/internal/browser"
	"linkedin-scraper/internal/models"
)

// Method records how a session was signed in
type Method string

const (
	MethodCookies     Method = "cookies"
	MethodCredentials Method = "credentials"
)

// Session is a signed-in browser page bound to one account. The caller that
// received it owns it and must Close it.
type Session struct {
	Page    browser.Page
	Account models.Account
	Method  Method

	verified  bool
	closeOnce sync.Once
	closeErr  error
}

// NewSession wraps a page whose sign-in has already been verified
func NewSession(page browser.Page, account models.Account, method Method) *Session {
	return &Session{Page: page, Account: account, Method: method, verified: true}
}

// SignedIn reports whether the session passed sign-in verification
func (s *Session) SignedIn() bool {
	return s != nil && s.verified && s.Page != nil
}

// Close releases the page. Later calls return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.verified = false
		if s.Page != nil {
			s.closeErr = s.Page.Close()
		}
	})
	return s.closeErr
}
