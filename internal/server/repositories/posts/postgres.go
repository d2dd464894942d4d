// Package posts provides a PostgreSQL-backed repository for post rows and
// their engagement (likes, comments).
package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sweatstreak/internal/common"
	"sweatstreak/internal/dbx"
	"sweatstreak/internal/server/models"
)

// PostgresRepository implements post storage over a dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new post. The posts_one_per_day constraint turns a second
// post for the same author and day into common.ErrorDuplicate, closing the
// check-then-insert race.
func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `
		INSERT INTO posts (id, author_username, image_url, caption, post_date, visibility)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		post.ID, post.AuthorUsername, post.ImageURL, post.Caption, post.Date, string(post.Visibility)).
		Scan(&post.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorDuplicate
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return post, nil
}

const postColumns = `id, author_username, image_url, caption, to_char(post_date, 'YYYY-MM-DD'), visibility, created_at`

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	p := &models.Post{}
	var visibility string
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.AuthorUsername, &p.ImageURL, &p.Caption, &p.Date, &visibility, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	p.Visibility = models.Visibility(visibility)

	if err := r.attachEngagement(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SelectRecent returns up to limit posts, newest first.
func (r *PostgresRepository) SelectRecent(ctx context.Context, limit int) ([]*models.Post, error) {
	query := `
		SELECT ` + postColumns + ` FROM posts
		ORDER BY created_at DESC, id
		LIMIT $1
	`
	return r.selectPosts(ctx, query, limit)
}

// SelectByAuthor returns the author's posts, newest first.
func (r *PostgresRepository) SelectByAuthor(ctx context.Context, author string) ([]*models.Post, error) {
	query := `
		SELECT ` + postColumns + ` FROM posts
		WHERE author_username = $1
		ORDER BY created_at DESC, id
	`
	return r.selectPosts(ctx, query, author)
}

// ExistsForDay reports whether author already posted on day (YYYY-MM-DD).
func (r *PostgresRepository) ExistsForDay(ctx context.Context, author, day string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM posts
			WHERE author_username = $1 AND post_date = $2
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, author, day).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) HasLike(ctx context.Context, postID, username string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM post_likes
			WHERE post_id = $1 AND username = $2
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, postID, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) InsertLike(ctx context.Context, postID, username string) error {
	query := `
		INSERT INTO post_likes (post_id, username)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, postID, username); err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorDuplicate
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteLike(ctx context.Context, postID, username string) error {
	query := `
		DELETE FROM post_likes
		WHERE post_id = $1 AND username = $2
	`
	if _, err := r.db.ExecContext(ctx, query, postID, username); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// InsertComment appends a comment; ordering comes from the serial id.
func (r *PostgresRepository) InsertComment(ctx context.Context, postID, username, body string) (*models.Comment, error) {
	query := `
		INSERT INTO post_comments (post_id, username, body)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	c := &models.Comment{Username: username, Text: body}
	if err := r.db.QueryRowContext(ctx, query, postID, username, body).Scan(&c.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) selectPosts(ctx context.Context, query string, arg any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Post
	for rows.Next() {
		p := &models.Post{}
		var visibility string
		if err := rows.Scan(&p.ID, &p.AuthorUsername, &p.ImageURL, &p.Caption, &p.Date, &visibility, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Visibility = models.Visibility(visibility)
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range result {
		if err := r.attachEngagement(ctx, p); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *PostgresRepository) attachEngagement(ctx context.Context, p *models.Post) error {
	likeQuery := `
		SELECT username FROM post_likes
		WHERE post_id = $1
		ORDER BY created_at, username
	`
	rows, err := r.db.QueryContext(ctx, likeQuery, p.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return err
		}
		p.Likes = append(p.Likes, u)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	commentQuery := `
		SELECT username, body, created_at FROM post_comments
		WHERE post_id = $1
		ORDER BY id
	`
	crows, err := r.db.QueryContext(ctx, commentQuery, p.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer crows.Close()
	for crows.Next() {
		var c models.Comment
		if err := crows.Scan(&c.Username, &c.Text, &c.CreatedAt); err != nil {
			return err
		}
		p.Comments = append(p.Comments, c)
	}
	return crows.Err()
}
