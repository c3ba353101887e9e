package models

import (
	"time"
)

// NoteStatus is the lifecycle state of a clinical note.
// Transitions: active -> resolved, active/resolved -> hidden. Hidden is final.
type NoteStatus string

const (
	NoteStatusActive   NoteStatus = "active"
	NoteStatusResolved NoteStatus = "resolved"
	NoteStatusHidden   NoteStatus = "hidden"
)

// CanTransitionNoteStatus reports whether a status change is allowed.
func CanTransitionNoteStatus(from, to NoteStatus) bool {
	switch from {
	case NoteStatusActive:
		return to == NoteStatusResolved || to == NoteStatusHidden
	case NoteStatusResolved:
		return to == NoteStatusHidden
	default:
		return false
	}
}

// Note is a clinical note: either a threaded comment on a journal entry or
// a private clinical observation (no entry, no thread). Unshared notes are
// visible only to their author; shared notes are additionally visible to
// the patient. Thread specialty isolation applies independently of Shared.
type Note struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PatientID  string `json:"patient_id"`
	AuthorID   string `json:"author_id"`
	AuthorRole Role   `json:"author_role"`

	// ThreadID is set for threaded comments, empty for private observations.
	ThreadID string `json:"thread_id,omitempty"`
	// EntryID links the note to a journal entry when it comments on one.
	EntryID string `json:"entry_id,omitempty"`

	Content string     `json:"content"`
	Shared  bool       `json:"shared"`
	Status  NoteStatus `json:"status"`

	// ThreadSpecialty and ThreadProfessionalID are denormalized from the
	// thread on load so isolation checks never need a second lookup. Both
	// are empty for private observations.
	ThreadSpecialty      Specialty `json:"thread_specialty,omitempty"`
	ThreadProfessionalID string    `json:"thread_professional_id,omitempty"`
}
