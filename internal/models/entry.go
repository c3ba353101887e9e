package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PolicyKind tags the visibility policy variant computed for an entry.
type PolicyKind string

const (
	// PolicyLocked: visible to the owning patient only.
	PolicyLocked PolicyKind = "locked"
	// PolicyOpenToAll: no explicit visibility set on an unlocked entry;
	// both specialties may see it.
	PolicyOpenToAll PolicyKind = "open"
	// PolicyRestricted: visible to the listed specialties and/or the
	// explicitly permitted professional ids, nobody else.
	PolicyRestricted PolicyKind = "restricted"
)

// VisibilityPolicy is the single policy value computed at write time from
// the entry's lock flag, tri-state specialty fields and permission list.
// Readers match on this instead of re-interpreting the raw fields.
type VisibilityPolicy struct {
	Kind            PolicyKind `bson:"kind" json:"kind"`
	Specialties     []string   `bson:"specialties,omitempty" json:"specialties,omitempty"`
	ProfessionalIDs []string   `bson:"professional_ids,omitempty" json:"professional_ids,omitempty"`
}

// Entry represents a journal entry for a patient. A nil MoodScore means the
// entry is a free-form diary/voice entry rather than a mood check-in.
type Entry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
	PatientID string             `bson:"patient_id" json:"patient_id"`

	MoodScore     *int   `bson:"mood_score,omitempty" json:"mood_score,omitempty"`
	Content       string `bson:"content" json:"content"`
	AttachmentURL string `bson:"attachment_url,omitempty" json:"attachment_url,omitempty"`

	// Locked entries are visible to the owning patient only, regardless of
	// any other visibility field. Writes enforce: locked => both flags
	// cleared and permissions emptied.
	Locked bool `bson:"locked" json:"locked"`

	// Tri-state visibility fields: nil = unset. These are the patient-facing
	// write API; readers go through Policy.
	VisibleToPsychologist *bool `bson:"visible_to_psychologist,omitempty" json:"visible_to_psychologist,omitempty"`
	VisibleToPsychiatrist *bool `bson:"visible_to_psychiatrist,omitempty" json:"visible_to_psychiatrist,omitempty"`

	// Permissions is an explicit allow-list of professional ids granted
	// visibility regardless of the specialty fields.
	Permissions []string `bson:"permissions,omitempty" json:"permissions,omitempty"`

	// Policy is recomputed on every write; see visibility.DerivePolicy.
	Policy VisibilityPolicy `bson:"policy" json:"policy"`
}
