package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linkedin-scraper/internal/models"
)

// RetryPolicy bounds how often a page fetch is attempted
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// Once is a policy that never retries
var Once = RetryPolicy{Attempts: 1}

// PolicyFromConfig converts a config entry into a RetryPolicy
func PolicyFromConfig(cfg models.RetryConfig) RetryPolicy {
	return RetryPolicy{Attempts: cfg.Attempts, Backoff: cfg.Backoff}
}

// Do calls fn until it succeeds or the attempts are used up, sleeping Backoff
// between attempts. Context errors and ErrNotAuthenticated are not retried.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := max(p.Attempts, 1)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if ctx.Err() != nil || errors.Is(err, models.ErrNotAuthenticated) {
			return err
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(p.Backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if attempts == 1 {
		return err
	}
	return fmt.Errorf("gave up after %d attempts: %w", attempts, err)
}
