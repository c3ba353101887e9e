package clinical

import (
	"context"
	"fmt"

	"github.com/aurelia-health/aurelia-backend/internal/models"
)

// NotificationRefs carries the optional payload references of an event.
type NotificationRefs struct {
	EntryID  string
	NoteID   string
	ThreadID string
}

// Dispatcher converts sharing/commenting events into per-recipient
// notification rows. Duplicate rows from retried sends are acceptable;
// idempotency is not enforced at this layer.
type Dispatcher struct {
	Store NotificationStore
	Feed  FeedPublisher
}

// Notify appends a notification row and pushes a feed event to the
// recipient's live dashboard.
func (d *Dispatcher) Notify(ctx context.Context, recipientID string, ntype models.NotificationType, title, message string, refs NotificationRefs) (models.Notification, error) {
	n := models.Notification{
		RecipientID: recipientID,
		Type:        ntype,
		Title:       title,
		Message:     message,
		EntryID:     refs.EntryID,
		NoteID:      refs.NoteID,
		ThreadID:    refs.ThreadID,
	}
	if err := d.Store.Insert(ctx, &n); err != nil {
		return models.Notification{}, fmt.Errorf("insert notification: %w", err)
	}

	if d.Feed != nil {
		d.Feed.Publish(ctx, []string{recipientID}, "notification", map[string]string{
			"notification_id": n.ID,
			"type":            string(ntype),
		})
	}
	return n, nil
}

// List returns the recipient's notifications, newest first.
func (d *Dispatcher) List(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return d.Store.List(ctx, recipientID, limit)
}

// MarkRead marks one notification read. Monotonic: marking an already-read
// notification is a no-op, never an error.
func (d *Dispatcher) MarkRead(ctx context.Context, notificationID string) error {
	return d.Store.MarkRead(ctx, notificationID)
}

// MarkAllRead marks every unread notification for the recipient.
func (d *Dispatcher) MarkAllRead(ctx context.Context, recipientID string) error {
	return d.Store.MarkAllRead(ctx, recipientID)
}

// UnreadCount reflects the notification table truthfully; it is counted
// live on every call and never cached.
func (d *Dispatcher) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	return d.Store.UnreadCount(ctx, recipientID)
}
