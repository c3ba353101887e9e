package models

import (
	"time"
)

// NotificationType tags what a notification is about.
type NotificationType string

const (
	NotificationNoteShared        NotificationType = "note_shared"
	NotificationEntryShared       NotificationType = "entry_shared"
	NotificationConnectionAdded   NotificationType = "connection_added"
	NotificationConnectionRevoked NotificationType = "connection_revoked"
)

// Notification is a per-recipient event row. ReadAt is nil while unread;
// once set it never reverts.
type Notification struct {
	ID          string           `json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	RecipientID string           `json:"recipient_id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`

	EntryID  string `json:"entry_id,omitempty"`
	NoteID   string `json:"note_id,omitempty"`
	ThreadID string `json:"thread_id,omitempty"`

	ReadAt *time.Time `json:"read_at,omitempty"`
}
