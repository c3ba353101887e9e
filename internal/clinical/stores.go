package clinical

import (
	"context"

	"github.com/aurelia-health/aurelia-backend/internal/models"
)

// Boundary contracts consumed by the engine. The concrete Postgres/Mongo
// implementations live in internal/store; tests substitute in-memory fakes.

// EntryStore persists journal entries, owner-filtered and ordered by
// timestamp descending.
type EntryStore interface {
	Create(ctx context.Context, entry *models.Entry) error
	Update(ctx context.Context, entry *models.Entry) error
	Delete(ctx context.Context, entryID, ownerID string) error
	GetByID(ctx context.Context, entryID string) (models.Entry, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Entry, error)
	// StripPermission removes professionalID from the permission list of
	// every entry owned by ownerID and recomputes their policies.
	StripPermission(ctx context.Context, ownerID, professionalID string) error
}

// ConnectionStore persists consent edges with composite-key uniqueness on
// (patient_id, professional_id).
type ConnectionStore interface {
	Insert(ctx context.Context, patientID, professionalID string) (models.Connection, error)
	Delete(ctx context.Context, patientID, professionalID string) error
	Exists(ctx context.Context, patientID, professionalID string) (bool, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.Connection, error)
	ListByProfessional(ctx context.Context, professionalID string) ([]models.Connection, error)
}

// ThreadStore persists threads with an insertion-time uniqueness constraint
// on (patient_id, professional_id, specialty). Insert returns ErrConflict
// when the triple already exists.
type ThreadStore interface {
	Insert(ctx context.Context, thread *models.Thread) error
	Find(ctx context.Context, patientID, professionalID string, specialty models.Specialty) (models.Thread, error)
	GetByID(ctx context.Context, threadID string) (models.Thread, error)
}

// NoteStore persists clinical notes. Listings carry the thread's specialty
// and professional denormalized onto each note.
type NoteStore interface {
	Insert(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, noteID string) (models.Note, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.Note, error)
	UpdateStatus(ctx context.Context, noteID string, status models.NoteStatus) error
}

// NotificationStore appends and reads per-recipient notifications.
// MarkRead is monotonic: a read notification never reverts to unread.
type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, recipientID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID string) error
	MarkAllRead(ctx context.Context, recipientID string) error
	UnreadCount(ctx context.Context, recipientID string) (int, error)
}

// AuditSink is the append-only write side of the audit log. The engine
// never reads it back.
type AuditSink interface {
	Append(ctx context.Context, record models.AuditRecord) error
}

// UserStore resolves identities for the registry.
type UserStore interface {
	GetByID(ctx context.Context, userID string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
}

// FeedPublisher pushes change events to subscribed dashboards. Failures are
// logged by implementations and never fail the triggering write.
type FeedPublisher interface {
	Publish(ctx context.Context, recipientIDs []string, eventType string, payload map[string]string)
}
