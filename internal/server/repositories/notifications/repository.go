// Package notifications persists the append-only notification log and the
// per-recipient read cursors over it.
package notifications

import (
	"context"

	"sweatstreak/internal/server/models"
)

type Repository interface {
	// Append adds one notification to the log and returns it with the
	// assigned ID.
	Append(ctx context.Context, recipient, message string) (*models.Notification, error)

	// SelectAfter returns the recipient's notifications with ID greater
	// than afterID, oldest first.
	SelectAfter(ctx context.Context, recipient string, afterID int64) ([]*models.Notification, error)

	// Cursor returns the last notification ID the recipient has consumed,
	// or 0 when the recipient has never drained.
	Cursor(ctx context.Context, recipient string) (int64, error)

	// AdvanceCursor moves the recipient's cursor to lastSeenID, creating
	// the cursor row if it does not exist yet.
	AdvanceCursor(ctx context.Context, recipient string, lastSeenID int64) error
}
