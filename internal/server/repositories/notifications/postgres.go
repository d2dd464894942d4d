package notifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sweatstreak/internal/common"
	"sweatstreak/internal/dbx"
	"sweatstreak/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, recipient, message string) (*models.Notification, error) {
	query := `
		INSERT INTO notifications (recipient, message)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	n := &models.Notification{Recipient: recipient, Message: message}
	err := r.db.QueryRowContext(ctx, query, recipient, message).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return n, nil
}

func (r *PostgresRepository) SelectAfter(ctx context.Context, recipient string, afterID int64) ([]*models.Notification, error) {
	query := `
		SELECT id, recipient, message, created_at FROM notifications
		WHERE recipient = $1 AND id > $2
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, recipient, afterID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	defer rows.Close()

	var result []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.Recipient, &n.Message, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return result, nil
}

func (r *PostgresRepository) Cursor(ctx context.Context, recipient string) (int64, error) {
	query := `SELECT last_seen_id FROM notification_cursors WHERE recipient = $1`
	var lastSeen int64
	err := r.db.QueryRowContext(ctx, query, recipient).Scan(&lastSeen)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return lastSeen, nil
}

func (r *PostgresRepository) AdvanceCursor(ctx context.Context, recipient string, lastSeenID int64) error {
	query := `
		INSERT INTO notification_cursors (recipient, last_seen_id)
		VALUES ($1, $2)
		ON CONFLICT (recipient) DO UPDATE SET last_seen_id = EXCLUDED.last_seen_id
	`
	if _, err := r.db.ExecContext(ctx, query, recipient, lastSeenID); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return nil
}
