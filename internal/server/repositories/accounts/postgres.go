// Package accounts provides a PostgreSQL-backed repository for account rows.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sweatstreak/internal/common"
	"sweatstreak/internal/dbx"
	"sweatstreak/internal/server/models"
)

// PostgresRepository implements account storage over a dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, email, username, password_hash, bio, avatar_url, location, is_private, notifications_enabled, created_at`

func scanAccount(row *sql.Row) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(&a.ID, &a.Email, &a.Username, &a.PasswordHash, &a.Bio,
		&a.AvatarURL, &a.Location, &a.IsPrivate, &a.NotificationsEnabled, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// Create inserts a new account. A taken username or email surfaces as
// common.ErrorDuplicate.
func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {

	query :=
		`INSERT INTO accounts (email, username, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.Email, account.Username, account.PasswordHash).Scan(&account.ID)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorDuplicate
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, username))
}

// GetByLogin resolves an account by username or email.
func (r *PostgresRepository) GetByLogin(ctx context.Context, identifier string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1 OR email = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, identifier))
}

// UpdateProfile overwrites the owner-editable profile fields.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, username, bio, avatarURL, location string) error {
	query :=
		`UPDATE accounts SET bio = $2, avatar_url = $3, location = $4
		 WHERE username = $1
		 `
	res, err := r.db.ExecContext(ctx, query, username, bio, avatarURL, location)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

// UpdateSettings overwrites the privacy and notification flags.
func (r *PostgresRepository) UpdateSettings(ctx context.Context, username string, isPrivate, notificationsEnabled bool) error {
	query :=
		`UPDATE accounts SET is_private = $2, notifications_enabled = $3
		 WHERE username = $1
		 `
	res, err := r.db.ExecContext(ctx, query, username, isPrivate, notificationsEnabled)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
