package models

import "time"

// Config represents the application configuration
type Config struct {
	Accounts         []Account `yaml:"accounts"`
	AccountsFilePath string    `yaml:"accounts_file"`

	CookieDir     string `yaml:"cookie_dir"`
	SessionStore  string `yaml:"session_store"`
	SessionDBPath string `yaml:"session_db"`

	Headless          bool    `yaml:"headless"`
	MaxSessions       int64   `yaml:"max_sessions"`
	NavigationsPerSec float64 `yaml:"navigations_per_sec"`

	PageLoadTimeout    time.Duration `yaml:"page_load_timeout"`
	LoginTimeout       time.Duration `yaml:"login_timeout"`
	CookieProbeTimeout time.Duration `yaml:"cookie_probe_timeout"`
	ElementTimeout     time.Duration `yaml:"element_timeout"`
	PollInterval       time.Duration `yaml:"poll_interval"`
	ForceLogin         bool          `yaml:"force_login"`

	EducationRetry RetryConfig `yaml:"education_retry"`
	SectionRetry   RetryConfig `yaml:"section_retry"`

	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// RetryConfig bounds how often a section fetch is attempted
type RetryConfig struct {
	Attempts int           `yaml:"attempts"`
	Backoff  time.Duration `yaml:"backoff"`
}
