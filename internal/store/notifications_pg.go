package store

import (
	"context"
	"database/sql"

	"github.com/aurelia-health/aurelia-backend/internal/database"
	"github.com/aurelia-health/aurelia-backend/internal/models"
)

// PostgresNotificationStore persists per-recipient notifications. MarkRead
// only ever fills a NULL read_at, so re-marking keeps the first timestamp.
type PostgresNotificationStore struct{}

func (PostgresNotificationStore) Insert(ctx context.Context, n *models.Notification) error {
	entryID := sql.NullString{String: n.EntryID, Valid: n.EntryID != ""}
	noteID := sql.NullString{String: n.NoteID, Valid: n.NoteID != ""}
	threadID := sql.NullString{String: n.ThreadID, Valid: n.ThreadID != ""}
	return database.PostgresDB.QueryRowContext(ctx, `
		INSERT INTO notifications (recipient_id, type, title, message, entry_id, note_id, thread_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, n.RecipientID, n.Type, n.Title, n.Message, entryID, noteID, threadID).Scan(&n.ID, &n.CreatedAt)
}

func (PostgresNotificationStore) List(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	rows, err := database.PostgresDB.QueryContext(ctx, `
		SELECT id, created_at, recipient_id, type, title, message,
		       COALESCE(entry_id, ''), COALESCE(note_id::text, ''), COALESCE(thread_id::text, ''), read_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.CreatedAt, &n.RecipientID, &n.Type, &n.Title, &n.Message,
			&n.EntryID, &n.NoteID, &n.ThreadID, &n.ReadAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (PostgresNotificationStore) MarkRead(ctx context.Context, notificationID string) error {
	_, err := database.PostgresDB.ExecContext(ctx, `
		UPDATE notifications SET read_at = NOW() WHERE id = $1 AND read_at IS NULL
	`, notificationID)
	return err
}

func (PostgresNotificationStore) MarkAllRead(ctx context.Context, recipientID string) error {
	_, err := database.PostgresDB.ExecContext(ctx, `
		UPDATE notifications SET read_at = NOW() WHERE recipient_id = $1 AND read_at IS NULL
	`, recipientID)
	return err
}

func (PostgresNotificationStore) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	var count int
	err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND read_at IS NULL
	`, recipientID).Scan(&count)
	return count, err
}
