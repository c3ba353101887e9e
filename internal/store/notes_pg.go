package store

import (
	"context"
	"database/sql"

	"github.com/aurelia-health/aurelia-backend/internal/clinical"
	"github.com/aurelia-health/aurelia-backend/internal/database"
	"github.com/aurelia-health/aurelia-backend/internal/models"
)

// PostgresNoteStore persists clinical notes. Listings denormalize the
// thread's specialty and professional onto each note so the isolation
// filter needs no second lookup.
type PostgresNoteStore struct{}

func (PostgresNoteStore) Insert(ctx context.Context, note *models.Note) error {
	threadID := sql.NullString{String: note.ThreadID, Valid: note.ThreadID != ""}
	entryID := sql.NullString{String: note.EntryID, Valid: note.EntryID != ""}
	return database.PostgresDB.QueryRowContext(ctx, `
		INSERT INTO notes (patient_id, author_id, author_role, thread_id, entry_id, content, shared, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, note.PatientID, note.AuthorID, note.AuthorRole, threadID, entryID,
		note.Content, note.Shared, note.Status).Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)
}

func (PostgresNoteStore) GetByID(ctx context.Context, noteID string) (models.Note, error) {
	notes, err := queryNotes(ctx, `WHERE n.id = $1`, noteID)
	if err != nil {
		return models.Note{}, err
	}
	if len(notes) == 0 {
		return models.Note{}, clinical.ErrNotFound
	}
	return notes[0], nil
}

func (PostgresNoteStore) ListByPatient(ctx context.Context, patientID string) ([]models.Note, error) {
	return queryNotes(ctx, `WHERE n.patient_id = $1 ORDER BY n.created_at DESC`, patientID)
}

func (PostgresNoteStore) UpdateStatus(ctx context.Context, noteID string, status models.NoteStatus) error {
	res, err := database.PostgresDB.ExecContext(ctx, `
		UPDATE notes SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, noteID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return clinical.ErrNotFound
	}
	return nil
}

func queryNotes(ctx context.Context, where string, args ...interface{}) ([]models.Note, error) {
	rows, err := database.PostgresDB.QueryContext(ctx, `
		SELECT n.id, n.created_at, n.updated_at, n.patient_id, n.author_id, n.author_role,
		       COALESCE(n.thread_id::text, ''), COALESCE(n.entry_id, ''), n.content, n.shared, n.status,
		       COALESCE(t.specialty, ''), COALESCE(t.professional_id::text, '')
		FROM notes n
		LEFT JOIN threads t ON t.id = n.thread_id
		`+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var n models.Note
		var threadSpecialty string
		if err := rows.Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt, &n.PatientID, &n.AuthorID, &n.AuthorRole,
			&n.ThreadID, &n.EntryID, &n.Content, &n.Shared, &n.Status,
			&threadSpecialty, &n.ThreadProfessionalID); err != nil {
			return nil, err
		}
		n.ThreadSpecialty = models.Specialty(threadSpecialty)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
