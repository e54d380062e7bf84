package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"linkedin-scraper/internal/auth"
	"linkedin-scraper/internal/browser"
	"linkedin-scraper/internal/models"
	"linkedin-scraper/internal/scraper"
	"linkedin-scraper/internal/storage"
	"linkedin-scraper/internal/utils"
)

// ProfileOptions selects the optional sections of a profile request
type ProfileOptions struct {
	Educations bool `json:"extract_educations"`
	Skills     bool `json:"extract_skills"`
	Interests  bool `json:"extract_interests"`
	ForceLogin bool `json:"force_login"`
}

// Service runs profile and search operations. Each operation signs in its
// own browser session and closes it before returning.
type Service struct {
	pool          *auth.CredentialPool
	authenticator *auth.Authenticator
	profiles      *scraper.ProfileScraper
	search        *scraper.SearchScraper
	store         storage.SessionStore
	sem           *semaphore.Weighted
	forceLogin    bool
	logger        *zap.Logger
}

// New wires a Service from its parts. The service owns store and closes it.
func New(cfg models.Config, pool *auth.CredentialPool, launcher browser.Launcher, store storage.SessionStore, logger *zap.Logger) *Service {
	maxSessions := cfg.MaxSessions
	if maxSessions <= 0 {
		maxSessions = 1
	}
	return &Service{
		pool:          pool,
		authenticator: auth.NewAuthenticator(launcher, store, auth.OptionsFromConfig(cfg), logger),
		profiles:      scraper.NewProfileScraper(scraper.OptionsFromConfig(cfg), logger),
		search:        scraper.NewSearchScraper(cfg.ElementTimeout, logger),
		store:         store,
		sem:           semaphore.NewWeighted(maxSessions),
		forceLogin:    cfg.ForceLogin,
		logger:        logger.Named("service"),
	}
}

// Open builds a Service backed by Chrome and the session store selected in
// cfg. With the sqlite store, configured accounts are merged with the ones
// already stored in the database.
func Open(ctx context.Context, cfg models.Config, logger *zap.Logger) (*Service, error) {
	store, accounts, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pool, err := auth.NewCredentialPool(accounts)
	if err != nil {
		store.Close()
		return nil, err
	}

	launcher := browser.NewChromeLauncher(browser.ChromeOptions{
		Headless:          cfg.Headless,
		NavigationsPerSec: cfg.NavigationsPerSec,
		PageLoadTimeout:   cfg.PageLoadTimeout,
	}, logger)

	logger.Info("service ready",
		zap.Int("accounts", pool.Len()),
		zap.String("session_store", cfg.SessionStore),
		zap.Int64("max_sessions", cfg.MaxSessions))
	return New(cfg, pool, launcher, store, logger), nil
}

func openStore(ctx context.Context, cfg models.Config) (storage.SessionStore, []models.Account, error) {
	switch cfg.SessionStore {
	case "", "file":
		store, err := storage.NewFileSessionStore(cfg.CookieDir)
		if err != nil {
			return nil, nil, err
		}
		return store, cfg.Accounts, nil
	case "sqlite":
		store, err := storage.NewDBSessionStore(ctx, cfg.SessionDBPath)
		if err != nil {
			return nil, nil, err
		}
		accounts, err := store.MergeAccounts(ctx, cfg.Accounts)
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, accounts, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown session store %q", models.ErrConfiguration, cfg.SessionStore)
	}
}

// Close releases the session store
func (s *Service) Close() error {
	return s.store.Close()
}

// session signs in a random account, holding one slot of the session limit
// until release is called
func (s *Service) session(ctx context.Context, forceFresh bool, logger *zap.Logger) (*auth.Session, func(), error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, nil, err
	}

	account := s.pool.PickRandom()
	session, err := s.authenticator.Establish(ctx, account, forceFresh || s.forceLogin)
	if err != nil {
		s.sem.Release(1)
		return nil, nil, err
	}
	sessionsInFlight.Inc()

	release := func() {
		if err := session.Close(); err != nil {
			logger.Warn("failed to close browser", zap.Error(err))
		}
		sessionsInFlight.Dec()
		s.sem.Release(1)
	}
	return session, release, nil
}

// ExtractProfile signs in, scrapes the profile referenced by ref (an URL or
// a bare profile id) and assembles the result
func (s *Service) ExtractProfile(ctx context.Context, ref string, opts ProfileOptions, sink ProgressSink) (profile *models.Profile, err error) {
	logger := s.logger.With(zap.String("operation_id", uuid.NewString()), zap.String("operation", "profile"))
	defer observe("profile", time.Now(), &err)

	profileURL := utils.NormalizeURL(ref)
	if utils.ProfileIDOf(profileURL) == "" {
		return nil, fmt.Errorf("%w: profile reference %q names no profile", models.ErrConfiguration, ref)
	}

	report(ctx, sink, progressLoginStarted)
	session, release, err := s.session(ctx, opts.ForceLogin, logger)
	if err != nil {
		logger.Error("sign-in failed", zap.Error(err))
		return nil, err
	}
	defer release()
	report(ctx, sink, progressLoginFinished)

	logger.Info("scraping profile", zap.String("url", profileURL), zap.String("account", session.Account.Email))

	report(ctx, sink, progressScrapeStarted)
	person, err := s.profiles.Scrape(ctx, session, profileURL, scraper.ScrapeOptions{
		Educations: opts.Educations,
		Skills:     opts.Skills,
		Interests:  opts.Interests,
	})
	if err != nil {
		logger.Error("scrape failed", zap.Error(err))
		return nil, err
	}
	report(ctx, sink, progressScrapeFinished)

	return BuildProfile(person, profileURL)
}

// Search signs in and runs a people search for name
func (s *Service) Search(ctx context.Context, name string, sink ProgressSink) (results []models.SearchResult, err error) {
	logger := s.logger.With(zap.String("operation_id", uuid.NewString()), zap.String("operation", "search"))
	defer observe("search", time.Now(), &err)

	report(ctx, sink, progressLoginStarted)
	session, release, err := s.session(ctx, false, logger)
	if err != nil {
		logger.Error("sign-in failed", zap.Error(err))
		return nil, err
	}
	defer release()
	report(ctx, sink, progressLoginFinished)

	report(ctx, sink, progressSearchStarted)
	results, err = s.search.Search(ctx, session, name)
	if err != nil {
		logger.Error("search failed", zap.Error(err))
		return nil, err
	}
	report(ctx, sink, progressSearchFinished)
	return results, nil
}

// ToolResult is what crosses the tool boundary: the payload on success, or
// an {"error": message} object on failure
type ToolResult struct {
	Value any
	Err   string
}

// Failed reports whether the result carries an error
func (r ToolResult) Failed() bool {
	return r.Err != ""
}

func (r ToolResult) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(map[string]string{"error": r.Err})
	}
	return json.Marshal(r.Value)
}

func toolResult(value any, err error) ToolResult {
	if err != nil {
		return ToolResult{Err: err.Error()}
	}
	return ToolResult{Value: value}
}

// GetProfile is the profile tool: ExtractProfile with every error turned
// into a ToolResult
func (s *Service) GetProfile(ctx context.Context, ref string, opts ProfileOptions, sink ProgressSink) ToolResult {
	profile, err := s.ExtractProfile(ctx, ref, opts, sink)
	return toolResult(profile, err)
}

// SearchProfiles is the search tool: Search with every error turned into a
// ToolResult
func (s *Service) SearchProfiles(ctx context.Context, name string, sink ProgressSink) ToolResult {
	results, err := s.Search(ctx, name, sink)
	return toolResult(results, err)
}

func observe(operation string, start time.Time, err *error) {
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	operationsTotal.WithLabelValues(operation, ErrorKind(*err)).Inc()
}

// ErrorKind classifies err for metrics and logs
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, models.ErrConfiguration):
		return "configuration"
	case errors.Is(err, models.ErrAuthentication):
		return "authentication"
	case errors.Is(err, models.ErrNotAuthenticated):
		return "not_authenticated"
	case errors.Is(err, models.ErrTransientLoad):
		return "transient_load"
	case errors.Is(err, models.ErrIncompleteRecord):
		return "incomplete_record"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
