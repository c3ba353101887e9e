package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit action tags for sensitive read/compute paths.
const (
	AuditEntriesViewed      = "entries.viewed"
	AuditExportBuilt        = "export.built"
	AuditNotesViewed        = "notes.viewed"
	AuditIsolationViolation = "isolation.violation"
	AuditConnectionCreated  = "connection.created"
	AuditConnectionRevoked  = "connection.revoked"
)

// AuditRecord is an append-only record of a sensitive action. Nothing in
// the engine updates or deletes these.
type AuditRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	ActorID  string            `bson:"actor_id" json:"actor_id"`
	Action   string            `bson:"action" json:"action"`
	TargetID string            `bson:"target_id,omitempty" json:"target_id,omitempty"`
	Metadata map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
}
