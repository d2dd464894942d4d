package accounts

import (
	"context"

	"sweatstreak/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	// GetByLogin resolves an account by username or email, for login forms
	// that accept either.
	GetByLogin(ctx context.Context, identifier string) (*models.Account, error)
	UpdateProfile(ctx context.Context, username, bio, avatarURL, location string) error
	UpdateSettings(ctx context.Context, username string, isPrivate, notificationsEnabled bool) error
}
