// Package storage persists authenticated cookie sets between runs.
package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"

	"linkedin-scraper/internal/models"
)

// SessionStore loads and saves the cookies of one account
type SessionStore interface {
	// Load returns the saved cookies for id with sameSite and expiry removed.
	// The bool is false when nothing was saved for id.
	Load(ctx context.Context, id string) ([]models.Cookie, bool, error)
	// Save replaces the cookies stored for id.
	Save(ctx context.Context, id string, cookies []models.Cookie) error
	Close() error
}

// SessionKey derives the storage key of an account id. The key is the hex
// MD5 digest, so existing cookie files stay readable.
func SessionKey(id string) string {
	sum := md5.Sum([]byte(id))
	return hex.EncodeToString(sum[:])
}

func strip(cookies []models.Cookie) []models.Cookie {
	out := make([]models.Cookie, len(cookies))
	for i, c := range cookies {
		out[i] = c.Stripped()
	}
	return out
}
