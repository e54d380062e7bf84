package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"linkedin-scraper/internal/database"
	"linkedin-scraper/internal/models"
)

// DBSessionStore keeps cookie sets in the SQLite sessions table
type DBSessionStore struct {
	DB          *database.DB
	SessionRepo *database.SessionRepository
	AccountRepo *database.AccountRepository
}

// NewDBSessionStore opens the database at dbPath
func NewDBSessionStore(ctx context.Context, dbPath string) (*DBSessionStore, error) {
	db, err := database.New(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	return &DBSessionStore{
		DB:          db,
		SessionRepo: database.NewSessionRepository(db),
		AccountRepo: database.NewAccountRepository(db),
	}, nil
}

func (ds *DBSessionStore) Load(ctx context.Context, id string) ([]models.Cookie, bool, error) {
	data, ok, err := ds.SessionRepo.Get(ctx, SessionKey(id))
	if err != nil || !ok {
		return nil, false, err
	}

	var cookies []models.Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, false, fmt.Errorf("failed to decode stored session: %w", err)
	}
	return strip(cookies), true, nil
}

func (ds *DBSessionStore) Save(ctx context.Context, id string, cookies []models.Cookie) error {
	if cookies == nil {
		cookies = []models.Cookie{}
	}
	data, err := json.Marshal(cookies)
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}
	if err := ds.SessionRepo.Upsert(ctx, SessionKey(id), data); err != nil {
		return err
	}
	return ds.AccountRepo.MarkLogin(ctx, id)
}

// MergeAccounts stores configured accounts and returns every account the
// database knows about, configured ones included.
func (ds *DBSessionStore) MergeAccounts(ctx context.Context, configured []models.Account) ([]models.Account, error) {
	if err := ds.AccountRepo.ImportAccounts(ctx, configured); err != nil {
		return nil, fmt.Errorf("failed to import accounts: %w", err)
	}
	return ds.AccountRepo.ListAccounts(ctx)
}

// Close closes the database connection
func (ds *DBSessionStore) Close() error {
	return ds.DB.Close()
}
