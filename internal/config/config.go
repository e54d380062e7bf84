package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"linkedin-scraper/internal/models"
)

// DefaultConfig returns the default configuration for the scraper
func DefaultConfig() models.Config {
	return models.Config{
		SessionStore:       "file",
		SessionDBPath:      "sessions.db",
		Headless:           true,
		MaxSessions:        2,
		NavigationsPerSec:  1.0,
		PageLoadTimeout:    30 * time.Second,
		LoginTimeout:       10 * time.Second,
		CookieProbeTimeout: 10 * time.Second,
		ElementTimeout:     10 * time.Second,
		PollInterval:       500 * time.Millisecond,
		EducationRetry:     models.RetryConfig{Attempts: 3, Backoff: time.Second},
		SectionRetry:       models.RetryConfig{Attempts: 1},
		Host:               "127.0.0.1",
		Port:               8000,
		RequestTimeout:     5 * time.Minute,
		LogLevel:           "info",
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path and then the environment. Accounts from all three sources are merged
// with duplicates removed.
func Load(path string) (models.Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("%w: read config: %w", models.ErrConfiguration, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("%w: parse config %s: %w", models.ErrConfiguration, path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}

	if cfg.AccountsFilePath != "" {
		content, err := os.ReadFile(cfg.AccountsFilePath)
		if err != nil {
			return cfg, fmt.Errorf("%w: read accounts file: %w", models.ErrConfiguration, err)
		}
		cfg.Accounts = append(cfg.Accounts, ParseAccounts(string(content))...)
	}

	cfg.Accounts = dedupe(cfg.Accounts)
	return cfg, nil
}

// Validate reports configuration that cannot start a service
func Validate(cfg models.Config) error {
	var problems []string
	if cfg.CookieDir == "" {
		problems = append(problems, "COOKIE_DIR is not set")
	}
	switch cfg.SessionStore {
	case "", "file":
		if len(cfg.Accounts) == 0 {
			problems = append(problems, "no LinkedIn accounts configured")
		}
	case "sqlite":
		if cfg.SessionDBPath == "" {
			problems = append(problems, "SESSION_DB is not set")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown session store %q", cfg.SessionStore))
	}
	if cfg.MaxSessions < 1 {
		problems = append(problems, "MAX_SESSIONS must be at least 1")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d", cfg.Port))
	}
	if cfg.EducationRetry.Attempts < 1 || cfg.SectionRetry.Attempts < 1 {
		problems = append(problems, "retry attempts must be at least 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", models.ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

// ParseAccounts parses accounts from text content, one email|password per
// line. Blank lines and lines starting with # are ignored.
func ParseAccounts(content string) []models.Account {
	var accounts []models.Account
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		email, password, ok := strings.Cut(line, "|")
		if !ok {
			continue
		}
		email = strings.TrimSpace(email)
		password = strings.TrimSpace(password)

		if email != "" && password != "" {
			accounts = append(accounts, models.Account{
				Email:    email,
				Password: password,
			})
		}
	}
	return accounts
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *models.Config, lookup lookupFunc) error {
	env := envReader{lookup: lookup}

	cfg.Accounts = append(cfg.Accounts, numberedAccounts(lookup)...)
	env.str("LINKEDIN_ACCOUNTS_FILE", &cfg.AccountsFilePath)
	env.str("COOKIE_DIR", &cfg.CookieDir)
	env.str("SESSION_STORE", &cfg.SessionStore)
	env.str("SESSION_DB", &cfg.SessionDBPath)
	env.str("MCP_HOST", &cfg.Host)
	env.integer("MCP_PORT", &cfg.Port)
	env.duration("MCP_TIMEOUT", &cfg.RequestTimeout)
	env.boolean("HEADLESS", &cfg.Headless)
	env.int64("MAX_SESSIONS", &cfg.MaxSessions)
	env.float("NAVIGATIONS_PER_SEC", &cfg.NavigationsPerSec)
	env.duration("PAGE_LOAD_TIMEOUT", &cfg.PageLoadTimeout)
	env.duration("LOGIN_TIMEOUT", &cfg.LoginTimeout)
	env.duration("ELEMENT_TIMEOUT", &cfg.ElementTimeout)
	env.boolean("FORCE_LOGIN", &cfg.ForceLogin)
	env.str("LOG_LEVEL", &cfg.LogLevel)
	env.str("LOG_FILE", &cfg.LogFile)

	return env.err()
}

// numberedAccounts reads LINKEDIN_USER_1/LINKEDIN_PASSWORD_1, _2, ... and
// stops at the first missing pair
func numberedAccounts(lookup lookupFunc) []models.Account {
	var accounts []models.Account
	for i := 1; ; i++ {
		email, okUser := lookup(fmt.Sprintf("LINKEDIN_USER_%d", i))
		password, okPass := lookup(fmt.Sprintf("LINKEDIN_PASSWORD_%d", i))
		if !okUser || !okPass {
			return accounts
		}
		accounts = append(accounts, models.Account{
			Email:    strings.TrimSpace(email),
			Password: password,
		})
	}
}

func dedupe(accounts []models.Account) []models.Account {
	seen := make(map[string]bool, len(accounts))
	out := accounts[:0]
	for _, a := range accounts {
		key := strings.ToLower(a.Email)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

type envReader struct {
	lookup lookupFunc
	errs   []error
}

func (e *envReader) value(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (e *envReader) fail(key, value string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s=%q: %w", key, value, err))
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.value(key); ok {
		*dst = v
	}
}

func (e *envReader) integer(key string, dst *int) {
	if v, ok := e.value(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) int64(key string, dst *int64) {
	if v, ok := e.value(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) float(key string, dst *float64) {
	if v, ok := e.value(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = f
	}
}

func (e *envReader) boolean(key string, dst *bool) {
	if v, ok := e.value(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = b
	}
}

// duration accepts Go durations ("90s") or a bare number of seconds
func (e *envReader) duration(key string, dst *time.Duration) {
	v, ok := e.value(key)
	if !ok {
		return
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = time.Duration(secs * float64(time.Second))
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = d
}

func (e *envReader) err() error {
	if len(e.errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", models.ErrConfiguration, multierr.Combine(e.errs...))
}
