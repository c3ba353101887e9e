package clinical

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelia-health/aurelia-backend/internal/models"
)

func newTestNoteManager(t *testing.T) (*NoteManager, *memNotifications, *memAudit) {
	t.Helper()
	users := newMemUsers(patientUser, psychUser, psychiaUser)
	connections := &memConnections{users: users}
	notifications := &memNotifications{}
	audit := &memAudit{}

	ctx := context.Background()
	_, err := connections.Insert(ctx, patientUser.ID, psychUser.ID)
	require.NoError(t, err)
	_, err = connections.Insert(ctx, patientUser.ID, psychiaUser.ID)
	require.NoError(t, err)

	return &NoteManager{
		Users:       users,
		Connections: connections,
		Threads:     &memThreads{},
		Notes:       &memNotes{},
		Dispatcher:  &Dispatcher{Store: notifications},
		Audit:       audit,
		Feed:        &memFeed{},
	}, notifications, audit
}

func TestGetOrCreateThreadIdempotent(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestNoteManager(t)

	first, err := m.GetOrCreateThread(ctx, patientUser.ID, psychUser.ID, models.SpecialtyPsychologist)
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := m.GetOrCreateThread(ctx, patientUser.ID, psychUser.ID, models.SpecialtyPsychologist)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestGetOrCreateThreadConcurrent(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestNoteManager(t)

	const callers = 8
	ids := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			thread, err := m.GetOrCreateThread(ctx, patientUser.ID, psychUser.ID, models.SpecialtyPsychologist)
			if assert.NoError(t, err) {
				ids[i] = thread.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id, "racing callers must converge on one thread")
	}
}

func TestGetOrCreateThreadRequiresConnection(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestNoteManager(t)

	_, err := m.GetOrCreateThread(ctx, "patient-unknown", psychUser.ID, models.SpecialtyPsychologist)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetOrCreateThreadSpecialtyMustMatchProfessional(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestNoteManager(t)

	// Both professionals are connected to the patient, but a
	// psychiatrist-tagged thread with the psychologist must never come
	// into existence: notes in it would notify across the specialty wall.
	_, err := m.GetOrCreateThread(ctx, patientUser.ID, psychUser.ID, models.SpecialtyPsychiatrist)
	assert.ErrorIs(t, err, ErrRoleMismatch)

	_, err = m.Threads.Find(ctx, patientUser.ID, psychUser.ID, models.SpecialtyPsychiatrist)
	assert.ErrorIs(t, err, ErrNotFound, "rejected thread must not be persisted")

	// The professional side of a thread can only be a professional.
	_, err = m.GetOrCreateThread(ctx, patientUser.ID, patientUser.ID, models.SpecialtyPsychologist)
	assert.ErrorIs(t, err, ErrRoleMismatch)
}

func TestGetOrCreateThreadRejectsUnknownSpecialty(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestNoteManager(t)

	_, err := m.GetOrCreateThread(ctx, patientUser.ID, psychUser.ID, "dentist")
	assert.ErrorIs(t, err, ErrRoleMismatch)
}

func TestSaveNoteSharedByProfessional(t *testing.T) {
	ctx := context.Background()
	m, notifications, _ := newTestNoteManager(t)

	thread, err := m.GetOrCreateThread(ctx, patientUser.ID, psychUser.ID, models.SpecialtyPsychologist)
	require.NoError(t, err)

	result, err := m.SaveNote(ctx, models.Note{
		PatientID: patientUser.ID,
		AuthorID:  psychUser.ID,
		ThreadID:  thread.ID,
		Content:   "sleep pattern discussed",
		Shared:    true,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Warning)
	assert.Equal(t, models.NoteStatusActive, result.Note.Status)
	assert.Equal(t, models.SpecialtyPsychologist, result.Note.ThreadSpecialty)

	require.Len(t, notifications.rows, 1)
	n := notifications.rows[0]
	assert.Equal(t, patientUser.ID, n.RecipientID)
	assert.Equal(t, result.Note.ID, n.NoteID)
	assert.Equal(t, thread.ID, n.ThreadID)
}

func TestSaveNoteSharedByPatientNotifiesThreadProfessional(t *testing.T) {
	ctx := context.Background()
	m, notifications, _ := newTestNoteManager(t)

	thread, err := m.GetOrCreateThread(ctx, patientUser.ID, psychUser.ID, models.SpecialtyPsychologist)
	require.NoError(t, err)

	_, err = m.SaveNote(ctx, models.Note{
		PatientID: patientUser.ID,
		AuthorID:  patientUser.ID,
		ThreadID:  thread.ID,
		Content:   "felt better today",
		Shared:    true,
	})
	require.NoError(t, err)

	require.Len(t, notifications.rows, 1)
	assert.Equal(t, psychUser.ID, notifications.rows[0].RecipientID)
}

func TestSaveNoteUnsharedNeverNotifies(t *testing.T) {
	ctx := context.Background()
	m, notifications, _ := newTestNoteManager(t)

	_, err := m.SaveNote(ctx, models.Note{
		PatientID: patientUser.ID,
		AuthorID:  psychUser.ID,
		Content:   "private clinical observation",
		Shared:    false,
	})
	require.NoError(t, err)
	assert.Empty(t, notifications.rows)
}

func TestSaveNoteNotificationFailureIsSoft(t *testing.T) {
	ctx := context.Background()
	m, notifications, _ := newTestNoteManager(t)
	notifications.failInsert = true

	thread, err := m.GetOrCreateThread(ctx, patientUser.ID, psychUser.ID, models.SpecialtyPsychologist)
	require.NoError(t, err)

	result, err := m.SaveNote(ctx, models.Note{
		PatientID: patientUser.ID,
		AuthorID:  psychUser.ID,
		ThreadID:  thread.ID,
		Content:   "still persisted",
		Shared:    true,
	})
	require.NoError(t, err, "notification failure must not roll back the note write")
	assert.NotEmpty(t, result.Warning)

	saved, err := m.Notes.GetByID(ctx, result.Note.ID)
	require.NoError(t, err)
	assert.Equal(t, "still persisted", saved.Content)
}

func TestSaveNoteWrongSpecialtyThreadIsViolation(t *testing.T) {
	ctx := context.Background()
	m, _, audit := newTestNoteManager(t)

	thread, err := m.GetOrCreateThread(ctx, patientUser.ID, psychUser.ID, models.SpecialtyPsychologist)
	require.NoError(t, err)

	// The psychiatrist tries to write into the psychologist's thread.
	_, err = m.SaveNote(ctx, models.Note{
		PatientID: patientUser.ID,
		AuthorID:  psychiaUser.ID,
		ThreadID:  thread.ID,
		Content:   "should never land",
		Shared:    true,
	})
	assert.ErrorIs(t, err, ErrSpecialtyIsolation)
	assert.Contains(t, audit.actions(), models.AuditIsolationViolation, "failed attempts are audited")
}

func TestSaveNoteSharedPatientNoteRequiresThread(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestNoteManager(t)

	_, err := m.SaveNote(ctx, models.Note{
		PatientID: patientUser.ID,
		AuthorID:  patientUser.ID,
		Content:   "shared into the void",
		Shared:    true,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

// Scenario: professional A comments on an entry (thread + shared note).
// The patient receives exactly one notification referencing the note, and
// professional B of the other specialty sees nothing for that patient.
func TestCommentScenarioIsolation(t *testing.T) {
	ctx := context.Background()
	m, notifications, _ := newTestNoteManager(t)

	thread, err := m.GetOrCreateThread(ctx, patientUser.ID, psychUser.ID, models.SpecialtyPsychologist)
	require.NoError(t, err)

	result, err := m.SaveNote(ctx, models.Note{
		PatientID: patientUser.ID,
		AuthorID:  psychUser.ID,
		ThreadID:  thread.ID,
		EntryID:   "65f000000000000000000001",
		Content:   "noticed a pattern in the evening entries",
		Shared:    true,
	})
	require.NoError(t, err)

	require.Len(t, notifications.rows, 1)
	assert.Equal(t, result.Note.ID, notifications.rows[0].NoteID)

	viewerB := models.Viewer{ID: psychiaUser.ID, Role: models.RoleProfessional, Specialty: models.SpecialtyPsychiatrist}
	notesForB, err := m.ListNotes(ctx, viewerB, patientUser.ID)
	require.NoError(t, err)
	assert.Empty(t, notesForB)

	patientViewer := models.Viewer{ID: patientUser.ID, Role: models.RolePatient}
	notesForPatient, err := m.ListNotes(ctx, patientViewer, patientUser.ID)
	require.NoError(t, err)
	require.Len(t, notesForPatient, 1)
	assert.Equal(t, result.Note.ID, notesForPatient[0].ID)
}

func TestListNotesAuditsProfessionalReads(t *testing.T) {
	ctx := context.Background()
	m, _, audit := newTestNoteManager(t)

	viewerA := models.Viewer{ID: psychUser.ID, Role: models.RoleProfessional, Specialty: models.SpecialtyPsychologist}
	_, err := m.ListNotes(ctx, viewerA, patientUser.ID)
	require.NoError(t, err)
	assert.Contains(t, audit.actions(), models.AuditNotesViewed)
}

func TestListNotesPatientCannotReadOtherPatients(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestNoteManager(t)

	other := models.Viewer{ID: "patient-2", Role: models.RolePatient}
	_, err := m.ListNotes(ctx, other, patientUser.ID)
	assert.ErrorIs(t, err, ErrRoleMismatch)
}

func TestUpdateNoteStatus(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestNoteManager(t)

	result, err := m.SaveNote(ctx, models.Note{
		PatientID: patientUser.ID,
		AuthorID:  psychUser.ID,
		Content:   "follow up on medication",
	})
	require.NoError(t, err)
	noteID := result.Note.ID

	author := models.Viewer{ID: psychUser.ID, Role: models.RoleProfessional, Specialty: models.SpecialtyPsychologist}

	t.Run("only the author may transition", func(t *testing.T) {
		stranger := models.Viewer{ID: psychiaUser.ID, Role: models.RoleProfessional, Specialty: models.SpecialtyPsychiatrist}
		_, err := m.UpdateNoteStatus(ctx, stranger, noteID, models.NoteStatusResolved)
		assert.ErrorIs(t, err, ErrRoleMismatch)
	})

	t.Run("active to resolved to hidden", func(t *testing.T) {
		updated, err := m.UpdateNoteStatus(ctx, author, noteID, models.NoteStatusResolved)
		require.NoError(t, err)
		assert.Equal(t, models.NoteStatusResolved, updated.Status)

		updated, err = m.UpdateNoteStatus(ctx, author, noteID, models.NoteStatusHidden)
		require.NoError(t, err)
		assert.Equal(t, models.NoteStatusHidden, updated.Status)
	})

	t.Run("no transition out of hidden", func(t *testing.T) {
		_, err := m.UpdateNoteStatus(ctx, author, noteID, models.NoteStatusActive)
		assert.ErrorIs(t, err, ErrConflict)
	})
}
