package database

import (
	"context"
	"database/sql"
	"fmt"

	"linkedin-scraper/internal/models"
)

// AccountRepository handles account operations
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db.GetConn()}
}

// ImportAccounts inserts accounts, updating the password of emails that
// are already known
func (ar *AccountRepository) ImportAccounts(ctx context.Context, accounts []models.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	tx, err := ar.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO accounts (email, password) VALUES (?, ?)
		ON CONFLICT(email) DO UPDATE SET
			password = excluded.password,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, account := range accounts {
		if _, err := stmt.ExecContext(ctx, account.Email, account.Password); err != nil {
			return fmt.Errorf("failed to insert account %s: %w", account.Email, err)
		}
	}

	return tx.Commit()
}

// ListAccounts returns every stored account in insertion order
func (ar *AccountRepository) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := ar.db.QueryContext(ctx, `SELECT email, password FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(&account.Email, &account.Password); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// MarkLogin records a successful credential login for email
func (ar *AccountRepository) MarkLogin(ctx context.Context, email string) error {
	_, err := ar.db.ExecContext(ctx, `
		UPDATE accounts
		SET last_login_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE email = ?
	`, email)
	return err
}
