package visibility

import (
	"github.com/aurelia-health/aurelia-backend/internal/models"
)

// Specialty isolation is absolute: a professional of one specialty never
// observes notes or threads belonging to another specialty for the same
// patient, independent of the shared flag. This file is the single
// authorizer used by live note listing, export filtering and the feed, so
// the three call sites cannot drift apart.

// CanViewThread reports whether viewer may observe a thread at all.
func CanViewThread(thread models.Thread, viewer models.Viewer) bool {
	switch viewer.Role {
	case models.RolePatient:
		return viewer.ID == thread.PatientID
	case models.RoleProfessional:
		return viewer.ID == thread.ProfessionalID && viewer.Specialty == thread.Specialty
	default:
		return false
	}
}

// CanViewNote reports whether a single note is visible to viewer.
//
// Patients see every shared note across their threads (and their own
// notes). A professional sees only notes they authored for that patient,
// plus shared patient-authored notes inside their own threads; another
// professional's notes are never visible, shared or not.
func CanViewNote(note models.Note, viewer models.Viewer) bool {
	switch viewer.Role {
	case models.RolePatient:
		if viewer.ID != note.PatientID {
			return false
		}
		return note.Shared || note.AuthorID == viewer.ID
	case models.RoleProfessional:
		if note.ThreadSpecialty != "" && note.ThreadSpecialty != viewer.Specialty {
			return false
		}
		if note.AuthorID == viewer.ID {
			return true
		}
		return note.AuthorRole == models.RolePatient && note.Shared && noteThreadProfessional(note) == viewer.ID
	default:
		return false
	}
}

// FilterNotes returns the notes visible to viewer, preserving order.
// Hidden notes are surfaced to nobody but their author.
func FilterNotes(notes []models.Note, viewer models.Viewer) []models.Note {
	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if n.Status == models.NoteStatusHidden && n.AuthorID != viewer.ID {
			continue
		}
		if CanViewNote(n, viewer) {
			out = append(out, n)
		}
	}
	return out
}

// noteThreadProfessional resolves the professional side of a note's thread.
// Notes loaded from the store carry the thread's professional as the
// counterpart of a patient-authored threaded note; for private
// observations there is no thread and no counterpart.
func noteThreadProfessional(note models.Note) string {
	if note.ThreadID == "" {
		return ""
	}
	// Patient-authored threaded notes address exactly one professional:
	// the thread owner. Stores denormalize that id into ThreadProfessionalID.
	return note.ThreadProfessionalID
}
