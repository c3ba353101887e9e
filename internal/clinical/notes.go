package clinical

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aurelia-health/aurelia-backend/internal/models"
	"github.com/aurelia-health/aurelia-backend/internal/visibility"
)

// NoteManager creates and isolates threaded clinical notes per
// patient/professional/specialty.
type NoteManager struct {
	Users       UserStore
	Connections ConnectionStore
	Threads     ThreadStore
	Notes       NoteStore
	Dispatcher  *Dispatcher
	Audit       AuditSink
	Feed        FeedPublisher
}

// SaveNoteResult carries the persisted note plus a recoverable warning.
// Warning is set when the note was written but its notification could not
// be dispatched; the note write is never rolled back for that.
type SaveNoteResult struct {
	Note    models.Note
	Warning string
}

// GetOrCreateThread returns the thread for (patient, professional,
// specialty), creating it if absent. Safe under concurrent callers: the
// storage uniqueness constraint resolves the race and the loser of a
// create re-reads the winner's row.
func (m *NoteManager) GetOrCreateThread(ctx context.Context, patientID, professionalID string, specialty models.Specialty) (models.Thread, error) {
	if !models.ValidSpecialty(specialty) {
		return models.Thread{}, fmt.Errorf("%w: unknown specialty %q", ErrRoleMismatch, specialty)
	}

	professional, err := m.Users.GetByID(ctx, professionalID)
	if err != nil {
		return models.Thread{}, fmt.Errorf("load professional: %w", err)
	}
	if professional.Role != models.RoleProfessional || professional.Specialty != specialty {
		// A thread tagged with a specialty its professional does not hold
		// would route notes and notifications across the isolation boundary.
		return models.Thread{}, fmt.Errorf("%w: thread specialty must match the professional", ErrRoleMismatch)
	}

	connected, err := m.Connections.Exists(ctx, patientID, professionalID)
	if err != nil {
		return models.Thread{}, fmt.Errorf("check connection: %w", err)
	}
	if !connected {
		return models.Thread{}, fmt.Errorf("%w: no connection between patient and professional", ErrNotFound)
	}

	thread, err := m.Threads.Find(ctx, patientID, professionalID, specialty)
	if err == nil {
		return thread, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.Thread{}, err
	}

	thread = models.Thread{
		PatientID:      patientID,
		ProfessionalID: professionalID,
		Specialty:      specialty,
	}
	if err := m.Threads.Insert(ctx, &thread); err != nil {
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrAlreadyExists) {
			// Lost the creation race; the unique triple now exists.
			return m.Threads.Find(ctx, patientID, professionalID, specialty)
		}
		return models.Thread{}, err
	}
	return thread, nil
}

// SaveNote validates and persists a note. When the note belongs to a
// thread, the thread's specialty must match the specialty implied by the
// author; a mismatch is a specialty isolation violation and is audited
// even though the write fails. Shared notes dispatch a notification to the
// counterpart (patient for professional-authored notes, the thread's
// professional for patient-authored ones); dispatch failure is returned as
// a warning, not an error.
func (m *NoteManager) SaveNote(ctx context.Context, note models.Note) (SaveNoteResult, error) {
	author, err := m.Users.GetByID(ctx, note.AuthorID)
	if err != nil {
		return SaveNoteResult{}, fmt.Errorf("load author: %w", err)
	}
	note.AuthorRole = author.Role
	if note.Status == "" {
		note.Status = models.NoteStatusActive
	}

	var thread models.Thread
	if note.ThreadID != "" {
		thread, err = m.Threads.GetByID(ctx, note.ThreadID)
		if err != nil {
			return SaveNoteResult{}, err
		}
		if thread.PatientID != note.PatientID {
			return SaveNoteResult{}, fmt.Errorf("%w: thread belongs to a different patient", ErrRoleMismatch)
		}

		switch author.Role {
		case models.RoleProfessional:
			if thread.ProfessionalID != author.ID || thread.Specialty != author.Specialty {
				m.auditViolation(ctx, author.ID, thread.ID, string(thread.Specialty), string(author.Specialty))
				return SaveNoteResult{}, ErrSpecialtyIsolation
			}
		case models.RolePatient:
			if thread.PatientID != author.ID {
				return SaveNoteResult{}, ErrRoleMismatch
			}
		default:
			return SaveNoteResult{}, ErrRoleMismatch
		}

		note.ThreadSpecialty = thread.Specialty
		note.ThreadProfessionalID = thread.ProfessionalID
	} else if author.Role == models.RolePatient && note.Shared {
		// A shared patient note needs a thread to address; a private
		// observation does not.
		return SaveNoteResult{}, fmt.Errorf("%w: shared patient note requires a thread", ErrNotFound)
	}

	if err := m.Notes.Insert(ctx, &note); err != nil {
		return SaveNoteResult{}, fmt.Errorf("insert note: %w", err)
	}

	result := SaveNoteResult{Note: note}
	if note.Shared {
		recipientID := note.PatientID
		if author.Role == models.RolePatient {
			recipientID = thread.ProfessionalID
		}
		refs := NotificationRefs{NoteID: note.ID, ThreadID: note.ThreadID, EntryID: note.EntryID}
		if _, derr := m.Dispatcher.Notify(ctx, recipientID, models.NotificationNoteShared,
			"New shared note", "A note was shared with you", refs); derr != nil {
			// Fail soft: the note write stands.
			log.Printf("note notification failed: %v", derr)
			result.Warning = "note saved but notification could not be delivered"
		}
	}

	if m.Feed != nil && note.Shared {
		recipients := []string{note.PatientID}
		if note.ThreadProfessionalID != "" {
			recipients = append(recipients, note.ThreadProfessionalID)
		}
		m.Feed.Publish(ctx, recipients, "note.shared", map[string]string{
			"note_id":   note.ID,
			"thread_id": note.ThreadID,
		})
	}

	return result, nil
}

// ListNotes returns the notes of a patient visible to viewer, applying the
// shared specialty-isolation filter. A professional reading a patient's
// notes is a sensitive read and is audited.
func (m *NoteManager) ListNotes(ctx context.Context, viewer models.Viewer, patientID string) ([]models.Note, error) {
	if viewer.Role == models.RolePatient && viewer.ID != patientID {
		return nil, ErrRoleMismatch
	}

	notes, err := m.Notes.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	filtered := visibility.FilterNotes(notes, viewer)

	if viewer.IsProfessional() && m.Audit != nil {
		if err := m.Audit.Append(ctx, models.AuditRecord{
			ActorID:  viewer.ID,
			Action:   models.AuditNotesViewed,
			TargetID: patientID,
		}); err != nil {
			log.Printf("audit append failed (%s): %v", models.AuditNotesViewed, err)
		}
	}

	return filtered, nil
}

// UpdateNoteStatus applies the note status state machine. Only the author
// may transition their note; invalid transitions are conflicts.
func (m *NoteManager) UpdateNoteStatus(ctx context.Context, viewer models.Viewer, noteID string, status models.NoteStatus) (models.Note, error) {
	note, err := m.Notes.GetByID(ctx, noteID)
	if err != nil {
		return models.Note{}, err
	}
	if note.AuthorID != viewer.ID {
		return models.Note{}, ErrRoleMismatch
	}
	if !models.CanTransitionNoteStatus(note.Status, status) {
		return models.Note{}, fmt.Errorf("%w: cannot transition note from %s to %s", ErrConflict, note.Status, status)
	}
	if err := m.Notes.UpdateStatus(ctx, noteID, status); err != nil {
		return models.Note{}, err
	}
	note.Status = status
	return note, nil
}

func (m *NoteManager) auditViolation(ctx context.Context, actorID, threadID, threadSpecialty, actorSpecialty string) {
	if m.Audit == nil {
		return
	}
	if err := m.Audit.Append(ctx, models.AuditRecord{
		ActorID:  actorID,
		Action:   models.AuditIsolationViolation,
		TargetID: threadID,
		Metadata: map[string]string{
			"thread_specialty": threadSpecialty,
			"actor_specialty":  actorSpecialty,
		},
	}); err != nil {
		log.Printf("audit append failed (%s): %v", models.AuditIsolationViolation, err)
	}
}
