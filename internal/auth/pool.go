package auth

import (
	"fmt"
	"math/rand"

	"linkedin-scraper/internal/models"
)

// CredentialPool holds the accounts sessions are signed in with
type CredentialPool struct {
	accounts []models.Account
}

// NewCredentialPool validates accounts and returns a pool over them. An empty
// pool or a repeated identifier is a configuration error.
func NewCredentialPool(accounts []models.Account) (*CredentialPool, error) {
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: no LinkedIn accounts configured", models.ErrConfiguration)
	}

	seen := make(map[string]struct{}, len(accounts))
	for _, account := range accounts {
		if account.Email == "" || account.Password == "" {
			return nil, fmt.Errorf("%w: account with empty email or password", models.ErrConfiguration)
		}
		if _, ok := seen[account.Email]; ok {
			return nil, fmt.Errorf("%w: duplicate account %s", models.ErrConfiguration, account.Email)
		}
		seen[account.Email] = struct{}{}
	}

	return &CredentialPool{accounts: append([]models.Account(nil), accounts...)}, nil
}

// PickRandom returns a uniformly chosen account
func (p *CredentialPool) PickRandom() models.Account {
	return p.accounts[rand.Intn(len(p.accounts))]
}

// Len returns the number of accounts in the pool
func (p *CredentialPool) Len() int {
	return len(p.accounts)
}
