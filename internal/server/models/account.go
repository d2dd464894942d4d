// Package models defines server-side data models persisted in the database.
package models

import "time"

// Account is a registered SweatStreak user. Credentials are kept only as a
// bcrypt hash; the cleartext password never touches the data model.
type Account struct {
	ID           string
	Email        string
	Username     string
	PasswordHash []byte
	Bio          string
	AvatarURL    string
	Location     string

	// IsPrivate hides the account's posts from the public scope entirely,
	// regardless of per-post visibility.
	IsPrivate bool

	// NotificationsEnabled gates fan-out on new posts by followed accounts.
	NotificationsEnabled bool

	CreatedAt time.Time
}
