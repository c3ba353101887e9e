package store

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/aurelia-health/aurelia-backend/internal/clinical"
	"github.com/aurelia-health/aurelia-backend/internal/database"
	"github.com/aurelia-health/aurelia-backend/internal/models"
)

// PostgresThreadStore persists threads. The UNIQUE on (patient_id,
// professional_id, specialty) turns a creation race into ErrConflict,
// which the note manager resolves by re-reading the winner.
type PostgresThreadStore struct{}

func (PostgresThreadStore) Insert(ctx context.Context, thread *models.Thread) error {
	err := database.PostgresDB.QueryRowContext(ctx, `
		INSERT INTO threads (patient_id, professional_id, specialty)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, thread.PatientID, thread.ProfessionalID, thread.Specialty).Scan(&thread.ID, &thread.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return clinical.ErrConflict
		}
		return err
	}
	return nil
}

func (PostgresThreadStore) Find(ctx context.Context, patientID, professionalID string, specialty models.Specialty) (models.Thread, error) {
	return scanThread(database.PostgresDB.QueryRowContext(ctx, `
		SELECT id, patient_id, professional_id, specialty, created_at
		FROM threads
		WHERE patient_id = $1 AND professional_id = $2 AND specialty = $3
	`, patientID, professionalID, specialty))
}

func (PostgresThreadStore) GetByID(ctx context.Context, threadID string) (models.Thread, error) {
	return scanThread(database.PostgresDB.QueryRowContext(ctx, `
		SELECT id, patient_id, professional_id, specialty, created_at
		FROM threads
		WHERE id = $1
	`, threadID))
}

func scanThread(row *sql.Row) (models.Thread, error) {
	var t models.Thread
	err := row.Scan(&t.ID, &t.PatientID, &t.ProfessionalID, &t.Specialty, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Thread{}, clinical.ErrNotFound
	}
	if err != nil {
		return models.Thread{}, err
	}
	return t, nil
}
