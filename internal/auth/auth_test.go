package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"linkedin-scraper/internal/browser/browsertest"
	"linkedin-scraper/internal/dom"
	"linkedin-scraper/internal/models"
)

const (
	loginPage = `<html><body><form id="login">
<input id="username"><input id="password" type="password">
<label for="rememberMeOptIn-checkbox">Remember me</label>
</form></body></html>`
	feedPage   = `<html><body><nav><a class="global-nav__primary-link" href="/feed/">Home</a></nav></body></html>`
	promptPage = `<html><body><form id="remember-me-prompt__form-primary"><button>Remember</button></form></body></html>`
)

var account = models.Account{Email: "a@example.com", Password: "secret"}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Load(ctx context.Context, id string) ([]models.Cookie, bool, error) {
	args := m.Called(ctx, id)
	cookies, _ := args.Get(0).([]models.Cookie)
	return cookies, args.Bool(1), args.Error(2)
}

func (m *mockStore) Save(ctx context.Context, id string, cookies []models.Cookie) error {
	return m.Called(ctx, id, cookies).Error(0)
}

func (m *mockStore) Close() error { return nil }

func testOptions() Options {
	return Options{
		CookieProbeTimeout: 10 * time.Millisecond,
		LoginTimeout:       40 * time.Millisecond,
		ElementTimeout:     10 * time.Millisecond,
		PollInterval:       2 * time.Millisecond,
	}
}

func newLoginPage() *browsertest.Page {
	return browsertest.NewPage(map[string]string{LoginURL: loginPage})
}

func signInOnPasswordSubmit(p *browsertest.Page, loc dom.Locator) {
	if loc.Query == "#password" {
		p.SetCookies([]models.Cookie{{Name: "li_at", Value: "fresh", Domain: ".linkedin.com", Path: "/"}})
		p.Show(feedPage)
	}
}

func count(items []string, want string) int {
	n := 0
	for _, item := range items {
		if item == want {
			n++
		}
	}
	return n
}

func TestEstablishFallsBackToCredentialsWithoutCookies(t *testing.T) {
	store := new(mockStore)
	store.On("Load", mock.Anything, account.Email).Return(nil, false, nil).Once()
	store.On("Save", mock.Anything, account.Email, mock.MatchedBy(func(c []models.Cookie) bool {
		return len(c) == 1 && c[0].Value == "fresh"
	})).Return(nil).Once()

	launcher := &browsertest.Launcher{New: func() *browsertest.Page {
		p := newLoginPage()
		p.OnSubmit = signInOnPasswordSubmit
		return p
	}}

	auth := NewAuthenticator(launcher, store, testOptions(), zap.NewNop())
	session, err := auth.Establish(context.Background(), account, false)
	require.NoError(t, err)
	defer session.Close()

	assert.True(t, session.SignedIn())
	assert.Equal(t, MethodCredentials, session.Method)

	page := launcher.Opened[0]
	assert.Equal(t, 1, count(page.Navigations, LoginURL))
	assert.Equal(t, []string{"#password"}, page.Submits)
	assert.Equal(t, account.Email, page.Typed["#username"])
	assert.Equal(t, account.Password, page.Typed["#password"])
	assert.Equal(t, []string{"label[for='rememberMeOptIn-checkbox']"}, page.Clicks)
	store.AssertExpectations(t)
}

func TestEstablishWithValidCookiesDoesNotSave(t *testing.T) {
	stored := []models.Cookie{
		{Name: "li_at", Value: "saved", Domain: ".linkedin.com", Path: "/"},
		{Name: "bcookie", Value: "x", Domain: ".linkedin.com", Path: "/"},
	}
	store := new(mockStore)
	store.On("Load", mock.Anything, account.Email).Return(stored, true, nil).Once()

	launcher := &browsertest.Launcher{New: func() *browsertest.Page {
		p := newLoginPage()
		p.RejectCookie = func(c models.Cookie) bool { return c.Name == "bcookie" }
		p.OnReload = func(p *browsertest.Page) {
			for _, c := range p.Jar() {
				if c.Name == "li_at" && c.Value == "saved" {
					p.Show(feedPage)
				}
			}
		}
		return p
	}}

	auth := NewAuthenticator(launcher, store, testOptions(), zap.NewNop())
	session, err := auth.Establish(context.Background(), account, false)
	require.NoError(t, err)
	defer session.Close()

	assert.Equal(t, MethodCookies, session.Method)
	page := launcher.Opened[0]
	assert.Equal(t, []string{SiteURL}, page.Navigations)
	assert.Empty(t, page.Submits)
	assert.Len(t, page.Jar(), 1)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestEstablishStaleCookiesSubmitsRememberPrompt(t *testing.T) {
	store := new(mockStore)
	store.On("Load", mock.Anything, account.Email).
		Return([]models.Cookie{{Name: "li_at", Value: "expired", Domain: ".linkedin.com", Path: "/"}}, true, nil).Once()
	store.On("Save", mock.Anything, account.Email, mock.Anything).Return(nil).Once()

	launcher := &browsertest.Launcher{New: func() *browsertest.Page {
		p := newLoginPage()
		p.OnSubmit = func(p *browsertest.Page, loc dom.Locator) {
			switch loc.Query {
			case "#password":
				p.Show(promptPage)
			case "#remember-me-prompt__form-primary":
				p.Show(feedPage)
			}
		}
		return p
	}}

	auth := NewAuthenticator(launcher, store, testOptions(), zap.NewNop())
	session, err := auth.Establish(context.Background(), account, false)
	require.NoError(t, err)
	defer session.Close()

	assert.Equal(t, MethodCredentials, session.Method)
	assert.Equal(t, []string{"#password", "#remember-me-prompt__form-primary"}, launcher.Opened[0].Submits)
	store.AssertExpectations(t)
}

func TestEstablishForceFreshSkipsCookies(t *testing.T) {
	store := new(mockStore)
	store.On("Save", mock.Anything, account.Email, mock.Anything).Return(nil).Once()

	launcher := &browsertest.Launcher{New: func() *browsertest.Page {
		p := newLoginPage()
		p.OnSubmit = signInOnPasswordSubmit
		return p
	}}

	auth := NewAuthenticator(launcher, store, testOptions(), zap.NewNop())
	session, err := auth.Establish(context.Background(), account, true)
	require.NoError(t, err)
	defer session.Close()

	store.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestEstablishTimeoutClosesPage(t *testing.T) {
	store := new(mockStore)
	store.On("Load", mock.Anything, account.Email).Return(nil, false, nil).Once()

	launcher := &browsertest.Launcher{New: newLoginPage}

	auth := NewAuthenticator(launcher, store, testOptions(), zap.NewNop())
	session, err := auth.Establish(context.Background(), account, false)
	assert.Nil(t, session)
	assert.ErrorIs(t, err, models.ErrAuthentication)
	assert.True(t, launcher.Opened[0].Closed())
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestEstablishToleratesFailedSignInProbe(t *testing.T) {
	store := new(mockStore)
	store.On("Load", mock.Anything, account.Email).Return(nil, false, nil).Once()
	store.On("Save", mock.Anything, account.Email, mock.Anything).Return(nil).Once()

	probeFailures := 0
	launcher := &browsertest.Launcher{New: func() *browsertest.Page {
		p := newLoginPage()
		p.OnSubmit = signInOnPasswordSubmit
		p.ExistsErr = func(loc dom.Locator) error {
			if loc.Query == AuthenticatedMarker.Query && probeFailures == 0 {
				probeFailures++
				return errors.New("Execution context was destroyed")
			}
			return nil
		}
		return p
	}}

	opts := testOptions()
	opts.LoginTimeout = time.Second
	auth := NewAuthenticator(launcher, store, opts, zap.NewNop())
	session, err := auth.Establish(context.Background(), account, false)
	require.NoError(t, err)
	defer session.Close()

	assert.True(t, session.SignedIn())
	assert.Equal(t, 1, probeFailures)
	store.AssertExpectations(t)
}

func TestEstablishReportsCheckpoint(t *testing.T) {
	store := new(mockStore)
	store.On("Load", mock.Anything, account.Email).Return(nil, false, nil).Once()

	checkpoint := CheckpointURL + "challenge/abc"
	launcher := &browsertest.Launcher{New: func() *browsertest.Page {
		p := newLoginPage()
		p.OnSubmit = func(p *browsertest.Page, loc dom.Locator) {
			p.Navigate(context.Background(), checkpoint)
		}
		return p
	}}

	auth := NewAuthenticator(launcher, store, testOptions(), zap.NewNop())
	session, err := auth.Establish(context.Background(), account, false)
	assert.Nil(t, session)
	require.ErrorIs(t, err, models.ErrAuthentication)
	assert.Contains(t, err.Error(), "checkpoint")
	assert.Equal(t, checkpoint, launcher.Opened[0].Navigations[1])
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestEstablishSaveFailureIsNotFatal(t *testing.T) {
	store := new(mockStore)
	store.On("Load", mock.Anything, account.Email).Return(nil, false, nil).Once()
	store.On("Save", mock.Anything, account.Email, mock.Anything).Return(assert.AnError).Once()

	launcher := &browsertest.Launcher{New: func() *browsertest.Page {
		p := newLoginPage()
		p.OnSubmit = signInOnPasswordSubmit
		return p
	}}

	auth := NewAuthenticator(launcher, store, testOptions(), zap.NewNop())
	session, err := auth.Establish(context.Background(), account, false)
	require.NoError(t, err)
	assert.True(t, session.SignedIn())
	require.NoError(t, session.Close())
	assert.False(t, session.SignedIn())
	assert.True(t, launcher.Opened[0].Closed())
}

func TestEstablishLauncherError(t *testing.T) {
	auth := NewAuthenticator(&browsertest.Launcher{Err: assert.AnError}, new(mockStore), testOptions(), zap.NewNop())
	_, err := auth.Establish(context.Background(), account, false)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestCredentialPool(t *testing.T) {
	_, err := NewCredentialPool(nil)
	assert.ErrorIs(t, err, models.ErrConfiguration)

	_, err = NewCredentialPool([]models.Account{account, account})
	assert.ErrorIs(t, err, models.ErrConfiguration)

	_, err = NewCredentialPool([]models.Account{{Email: "x@example.com"}})
	assert.ErrorIs(t, err, models.ErrConfiguration)

	other := models.Account{Email: "b@example.com", Password: "pw"}
	pool, err := NewCredentialPool([]models.Account{account, other})
	require.NoError(t, err)
	assert.Equal(t, 2, pool.Len())

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		seen[pool.PickRandom().Email] = true
	}
	assert.Len(t, seen, 2)
}
