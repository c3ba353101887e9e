package store

import (
	"context"
	"database/sql"

	"github.com/aurelia-health/aurelia-backend/internal/clinical"
	"github.com/aurelia-health/aurelia-backend/internal/database"
	"github.com/aurelia-health/aurelia-backend/internal/models"
)

// PostgresUserStore resolves identities from the users table.
type PostgresUserStore struct{}

func (PostgresUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	return scanUser(database.PostgresDB.QueryRowContext(ctx, `
		SELECT id, username, password_hash, role, specialty, created_at, is_active
		FROM users WHERE id = $1 AND is_active = TRUE
	`, userID))
}

func (PostgresUserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return scanUser(database.PostgresDB.QueryRowContext(ctx, `
		SELECT id, username, password_hash, role, specialty, created_at, is_active
		FROM users WHERE LOWER(username) = LOWER($1) AND is_active = TRUE
	`, username))
}

func scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	var specialty sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &specialty, &u.CreatedAt, &u.IsActive)
	if err == sql.ErrNoRows {
		return models.User{}, clinical.ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	if specialty.Valid {
		u.Specialty = models.Specialty(specialty.String)
	}
	return u, nil
}
