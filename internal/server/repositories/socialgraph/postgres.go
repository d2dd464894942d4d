// Package socialgraph provides a PostgreSQL-backed repository for follow
// edges and block relations. A follow edge is one row; the follower's
// "following" list and the followee's "followers" list are two views of the
// same rows, so the two-sided invariant holds by construction.
package socialgraph

import (
	"context"
	"fmt"

	"sweatstreak/internal/common"
	"sweatstreak/internal/dbx"
)

// PostgresRepository implements the social graph over a dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Follow inserts the edge follower -> followee. A duplicate edge surfaces as
// common.ErrorDuplicate via the primary key.
func (r *PostgresRepository) Follow(ctx context.Context, follower, followee string) error {
	query := `
		INSERT INTO follows (follower_username, followee_username)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, follower, followee); err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorDuplicate
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Unfollow deletes the edge. Deleting an absent edge affects zero rows and
// is not an error.
func (r *PostgresRepository) Unfollow(ctx context.Context, follower, followee string) error {
	query := `
		DELETE FROM follows
		WHERE follower_username = $1 AND followee_username = $2
	`
	if _, err := r.db.ExecContext(ctx, query, follower, followee); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Following returns the usernames that username follows, oldest edge first.
func (r *PostgresRepository) Following(ctx context.Context, username string) ([]string, error) {
	query := `
		SELECT followee_username FROM follows
		WHERE follower_username = $1
		ORDER BY created_at, followee_username
	`
	return r.selectUsernames(ctx, query, username)
}

// Followers returns the usernames that follow username, oldest edge first.
func (r *PostgresRepository) Followers(ctx context.Context, username string) ([]string, error) {
	query := `
		SELECT follower_username FROM follows
		WHERE followee_username = $1
		ORDER BY created_at, follower_username
	`
	return r.selectUsernames(ctx, query, username)
}

func (r *PostgresRepository) IsFollowing(ctx context.Context, follower, followee string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM follows
			WHERE follower_username = $1 AND followee_username = $2
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, follower, followee).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// Block adds target to username's block set. Re-blocking is absorbed by
// ON CONFLICT, matching the idempotent add in the block operation.
func (r *PostgresRepository) Block(ctx context.Context, username, target string) error {
	query := `
		INSERT INTO blocks (username, target_username)
		VALUES ($1, $2)
		ON CONFLICT (username, target_username) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, username, target); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Unblock removes target from username's block set, idempotently.
func (r *PostgresRepository) Unblock(ctx context.Context, username, target string) error {
	query := `
		DELETE FROM blocks
		WHERE username = $1 AND target_username = $2
	`
	if _, err := r.db.ExecContext(ctx, query, username, target); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Blocked returns the usernames that username has blocked.
func (r *PostgresRepository) Blocked(ctx context.Context, username string) ([]string, error) {
	query := `
		SELECT target_username FROM blocks
		WHERE username = $1
		ORDER BY created_at, target_username
	`
	return r.selectUsernames(ctx, query, username)
}

func (r *PostgresRepository) selectUsernames(ctx context.Context, query, arg string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
