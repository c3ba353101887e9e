package store

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/aurelia-health/aurelia-backend/internal/clinical"
	"github.com/aurelia-health/aurelia-backend/internal/database"
	"github.com/aurelia-health/aurelia-backend/internal/models"
)

const pqUniqueViolation = "23505"

// PostgresConnectionStore persists consent edges. The composite UNIQUE on
// (patient_id, professional_id) backs the duplicate guard.
type PostgresConnectionStore struct{}

func (PostgresConnectionStore) Insert(ctx context.Context, patientID, professionalID string) (models.Connection, error) {
	var conn models.Connection
	err := database.PostgresDB.QueryRowContext(ctx, `
		INSERT INTO connections (patient_id, professional_id)
		VALUES ($1, $2)
		RETURNING id, patient_id, professional_id, created_at
	`, patientID, professionalID).Scan(&conn.ID, &conn.PatientID, &conn.ProfessionalID, &conn.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return models.Connection{}, clinical.ErrAlreadyConnected
		}
		return models.Connection{}, err
	}
	return conn, nil
}

func (PostgresConnectionStore) Delete(ctx context.Context, patientID, professionalID string) error {
	res, err := database.PostgresDB.ExecContext(ctx, `
		DELETE FROM connections WHERE patient_id = $1 AND professional_id = $2
	`, patientID, professionalID)
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

func (PostgresConnectionStore) Exists(ctx context.Context, patientID, professionalID string) (bool, error) {
	var exists bool
	err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM connections WHERE patient_id = $1 AND professional_id = $2)
	`, patientID, professionalID).Scan(&exists)
	return exists, err
}

func (PostgresConnectionStore) ListByPatient(ctx context.Context, patientID string) ([]models.Connection, error) {
	rows, err := database.PostgresDB.QueryContext(ctx, `
		SELECT c.id, c.patient_id, c.professional_id, c.created_at,
		       p.username, pr.username, COALESCE(pr.specialty, '')
		FROM connections c
		JOIN users p ON p.id = c.patient_id
		JOIN users pr ON pr.id = c.professional_id
		WHERE c.patient_id = $1
		ORDER BY c.created_at DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConnections(rows)
}

func (PostgresConnectionStore) ListByProfessional(ctx context.Context, professionalID string) ([]models.Connection, error) {
	rows, err := database.PostgresDB.QueryContext(ctx, `
		SELECT c.id, c.patient_id, c.professional_id, c.created_at,
		       p.username, pr.username, COALESCE(pr.specialty, '')
		FROM connections c
		JOIN users p ON p.id = c.patient_id
		JOIN users pr ON pr.id = c.professional_id
		WHERE c.professional_id = $1
		ORDER BY c.created_at DESC
	`, professionalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConnections(rows)
}

func scanConnections(rows *sql.Rows) ([]models.Connection, error) {
	connections := []models.Connection{}
	for rows.Next() {
		var c models.Connection
		var specialty string
		if err := rows.Scan(&c.ID, &c.PatientID, &c.ProfessionalID, &c.CreatedAt,
			&c.PatientUsername, &c.ProfessionalUsername, &specialty); err != nil {
			return nil, err
		}
		c.ProfessionalSpecialty = models.Specialty(specialty)
		connections = append(connections, c)
	}
	return connections, rows.Err()
}
