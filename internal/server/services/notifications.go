package services

import (
	"context"
	"database/sql"

	"sweatstreak/internal/dbx"
	"sweatstreak/internal/server/models"
	"sweatstreak/internal/server/repositories/repomanager"
)

// NotificationService reads the append-only notification log. Draining moves
// a per-recipient cursor instead of deleting rows, so a reader that crashes
// before the cursor advances sees the same notifications again
// (at-least-once).
type NotificationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewNotificationService(db *sql.DB, m repomanager.RepositoryManager) *NotificationService {
	return &NotificationService{db: db, repomanager: m}
}

// Drain returns the recipient's unread notifications, oldest first, and
// advances the cursor past them in the same transaction.
func (s *NotificationService) Drain(ctx context.Context, recipient string) ([]*models.Notification, error) {
	var result []*models.Notification

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Notifications(tx)

		cursor, err := repo.Cursor(ctx, recipient)
		if err != nil {
			return err
		}

		result, err = repo.SelectAfter(ctx, recipient, cursor)
		if err != nil {
			return err
		}
		if len(result) == 0 {
			return nil
		}

		return repo.AdvanceCursor(ctx, recipient, result[len(result)-1].ID)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
