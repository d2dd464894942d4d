package models

import "time"

// Notification is one row of the append-only notification log. Rows are
// never deleted; each recipient tracks a cursor over them instead, so a
// crashed reader re-reads rather than loses messages.
type Notification struct {
	ID        int64
	Recipient string
	Message   string
	CreatedAt time.Time
}
