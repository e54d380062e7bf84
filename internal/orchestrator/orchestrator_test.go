package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"linkedin-scraper/internal/auth"
	"linkedin-scraper/internal/browser/browsertest"
	"linkedin-scraper/internal/dom"
	"linkedin-scraper/internal/models"
	"linkedin-scraper/internal/scraper"
	"linkedin-scraper/internal/storage"
)

const (
	loginHTML   = `<html><body><form><input id="username"><input id="password"></form></body></html>`
	feedHTML    = `<html><body><a class="global-nav__primary-link" href="/feed/">Home</a></body></html>`
	profileHTML = `<html><body><main><div class="mt2 relative"><h1>Jane  Q Doe</h1></div></main></body></html>`
	searchHTML  = `<html><body><main><div data-view-name="people-search-result"><div><a data-view-name="search-result-lockup-title" href="/in/jdoe/">Jane Doe</a></div><div>Engineer</div></div></main></body></html>`
)

var testAccount = models.Account{Email: "a@example.com", Password: "secret"}

func testConfig() models.Config {
	return models.Config{
		MaxSessions:        1,
		LoginTimeout:       40 * time.Millisecond,
		CookieProbeTimeout: 10 * time.Millisecond,
		ElementTimeout:     10 * time.Millisecond,
		PollInterval:       2 * time.Millisecond,
		EducationRetry:     models.RetryConfig{Attempts: 1},
		SectionRetry:       models.RetryConfig{Attempts: 1},
	}
}

type recorder struct {
	mu    sync.Mutex
	steps []Progress
}

func (r *recorder) Report(_ context.Context, p Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, p)
}

func (r *recorder) percents() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.steps))
	for i, p := range r.steps {
		out[i] = p.Percent
	}
	return out
}

func newService(t *testing.T, signIn bool) (*Service, *browsertest.Launcher, *storage.FileSessionStore) {
	t.Helper()

	store, err := storage.NewFileSessionStore(t.TempDir())
	require.NoError(t, err)
	pool, err := auth.NewCredentialPool([]models.Account{testAccount})
	require.NoError(t, err)

	launcher := &browsertest.Launcher{New: func() *browsertest.Page {
		p := browsertest.NewPage(nil)
		p.Route(auth.LoginURL, loginHTML)
		p.Route("https://www.linkedin.com/in/jdoe", profileHTML)
		p.Route(scraper.SearchURL("Jane Doe"), searchHTML)
		if signIn {
			p.OnSubmit = func(p *browsertest.Page, loc dom.Locator) {
				p.SetCookies([]models.Cookie{{Name: "li_at", Value: "v", Domain: ".linkedin.com", Path: "/"}})
				p.Show(feedHTML)
			}
		}
		return p
	}}

	svc := New(testConfig(), pool, launcher, store, zap.NewNop())
	t.Cleanup(func() { svc.Close() })
	return svc, launcher, store
}

func TestBuildProfile(t *testing.T) {
	person := &models.Person{
		Name:       "Jane Q Doe",
		Headline:   "Engineer",
		Location:   "London",
		About:      "About me",
		OpenToWork: true,
		Skills:     []string{"Go"},
	}

	profile, err := BuildProfile(person, "https://www.linkedin.com/in/jdoe")
	require.NoError(t, err)

	assert.Equal(t, "Jane", profile.GivenName)
	assert.Equal(t, "Q", profile.Surname)
	assert.Equal(t, "jdoe@linkedin.com", profile.Email)
	assert.Equal(t, "About me", profile.CV)
	assert.Equal(t, "Engineer", profile.IndustryName)
	assert.Equal(t, "London", profile.GeoLocation)
	assert.True(t, profile.OpenToWork)
	assert.Equal(t, []models.Skill{{Name: "Go"}}, profile.Skills)
	assert.NotNil(t, profile.Experiences)
	assert.NotNil(t, profile.Educations)
	assert.NotNil(t, profile.Interests)

	data, err := json.Marshal(profile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"experiences":[]`)
}

func TestBuildProfileSingleName(t *testing.T) {
	profile, err := BuildProfile(&models.Person{Name: "Prince"}, "https://www.linkedin.com/in/prince/")
	require.NoError(t, err)
	assert.Equal(t, "Prince", profile.GivenName)
	assert.Empty(t, profile.Surname)
	assert.Equal(t, "prince@linkedin.com", profile.Email)
	assert.Equal(t, []models.Skill{}, profile.Skills)
}

func TestBuildProfileWithoutPerson(t *testing.T) {
	_, err := BuildProfile(nil, "https://www.linkedin.com/in/jdoe")
	assert.ErrorIs(t, err, models.ErrIncompleteRecord)
}

func TestGetProfile(t *testing.T) {
	svc, launcher, store := newService(t, true)
	progress := &recorder{}

	result := svc.GetProfile(context.Background(), "jdoe", ProfileOptions{}, progress)
	require.False(t, result.Failed(), result.Err)

	profile, ok := result.Value.(*models.Profile)
	require.True(t, ok)
	assert.Equal(t, "Jane", profile.GivenName)
	assert.Equal(t, "Q", profile.Surname)
	assert.Equal(t, "https://www.linkedin.com/in/jdoe", profile.LinkedInProfileURL)
	assert.Empty(t, profile.Experiences)

	assert.Equal(t, []int{10, 30, 40, 90}, progress.percents())
	require.Equal(t, 1, launcher.Count())
	assert.True(t, launcher.Opened[0].Closed())

	_, err := os.Stat(store.Path(testAccount.Email))
	assert.NoError(t, err)
}

func TestGetProfileAuthenticationFailure(t *testing.T) {
	svc, launcher, _ := newService(t, false)
	progress := &recorder{}

	result := svc.GetProfile(context.Background(), "jdoe", ProfileOptions{}, progress)
	require.True(t, result.Failed())
	assert.Contains(t, result.Err, models.ErrAuthentication.Error())

	data, err := json.Marshal(result)
	require.NoError(t, err)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, result.Err, payload["error"])

	assert.Equal(t, []int{10}, progress.percents())
	assert.True(t, launcher.Opened[0].Closed())
}

func TestGetProfileRejectsEmptyReference(t *testing.T) {
	for _, ref := range []string{"", "/", " ", "https://www.linkedin.com/in/"} {
		t.Run(ref, func(t *testing.T) {
			svc, launcher, _ := newService(t, true)
			progress := &recorder{}

			_, err := svc.ExtractProfile(context.Background(), ref, ProfileOptions{}, progress)
			assert.ErrorIs(t, err, models.ErrConfiguration)
			assert.Zero(t, launcher.Count())
			assert.Empty(t, progress.percents())
		})
	}
}

func TestSearchProfiles(t *testing.T) {
	svc, launcher, _ := newService(t, true)

	result := svc.SearchProfiles(context.Background(), "Jane Doe", nil)
	require.False(t, result.Failed(), result.Err)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"person_name":"Jane Doe","person_linkedin_url":"https://www.linkedin.com/in/jdoe/","profile_id":"jdoe","title":"Engineer"}]`, string(data))
	assert.True(t, launcher.Opened[0].Closed())
}

func TestOperationsRespectCancellation(t *testing.T) {
	svc, launcher, _ := newService(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := svc.SearchProfiles(ctx, "Jane Doe", nil)
	assert.True(t, result.Failed())
	assert.Zero(t, launcher.Count())
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "success"},
		{models.ErrConfiguration, "configuration"},
		{fmt.Errorf("x: %w", models.ErrAuthentication), "authentication"},
		{models.ErrNotAuthenticated, "not_authenticated"},
		{models.ErrTransientLoad, "transient_load"},
		{models.ErrIncompleteRecord, "incomplete_record"},
		{context.Canceled, "canceled"},
		{assert.AnError, "internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorKind(tt.err))
	}
}

func TestOpenRejectsUnknownStore(t *testing.T) {
	cfg := testConfig()
	cfg.SessionStore = "redis"
	cfg.Accounts = []models.Account{testAccount}

	_, err := Open(context.Background(), cfg, zap.NewNop())
	assert.ErrorIs(t, err, models.ErrConfiguration)
}
