package models

import "time"

// RefreshToken is a server-stored, single-use token rotated on every refresh.
type RefreshToken struct {
	ID        string
	AccountID string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
