package posts

import (
	"context"

	"sweatstreak/internal/server/models"
)

type Repository interface {
	// Create inserts a new post. A second post by the same author on the
	// same calendar day surfaces as common.ErrorDuplicate.
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// SelectRecent returns up to limit posts, newest first, with likes and
	// comments attached.
	SelectRecent(ctx context.Context, limit int) ([]*models.Post, error)
	SelectByAuthor(ctx context.Context, author string) ([]*models.Post, error)
	// ExistsForDay reports whether author already has a post dated day
	// (YYYY-MM-DD).
	ExistsForDay(ctx context.Context, author, day string) (bool, error)

	HasLike(ctx context.Context, postID, username string) (bool, error)
	InsertLike(ctx context.Context, postID, username string) error
	DeleteLike(ctx context.Context, postID, username string) error
	InsertComment(ctx context.Context, postID, username, body string) (*models.Comment, error)
}
