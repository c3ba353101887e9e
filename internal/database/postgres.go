package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL database
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	// Set connection pool settings
	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err = PostgresDB.Ping(); err != nil {
		return err
	}

	log.Println("✅ Connected to PostgreSQL")

	// Initialize tables
	if err = InitPostgresTables(); err != nil {
		return err
	}

	return nil
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables() error {
	queries := []string{
		// Users table: patients, professionals (with specialty) and clinic admins
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username VARCHAR(30) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL,
			specialty VARCHAR(20),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		// Connections: consent edges between a patient and a professional.
		// The composite UNIQUE backs the AlreadyConnected guard.
		`CREATE TABLE IF NOT EXISTS connections (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			patient_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			professional_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE(patient_id, professional_id)
		)`,

		// Threads: one conversation scope per (patient, professional, specialty).
		// The UNIQUE constraint resolves the concurrent get-or-create race.
		`CREATE TABLE IF NOT EXISTS threads (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			patient_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			professional_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			specialty VARCHAR(20) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE(patient_id, professional_id, specialty)
		)`,

		// Notes: threaded comments on entries or private clinical observations
		`CREATE TABLE IF NOT EXISTS notes (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			patient_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			author_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			author_role VARCHAR(20) NOT NULL,
			thread_id UUID REFERENCES threads(id) ON DELETE CASCADE,
			entry_id VARCHAR(24),
			content TEXT NOT NULL,
			shared BOOLEAN NOT NULL DEFAULT FALSE,
			status VARCHAR(20) NOT NULL DEFAULT 'active'
		)`,

		// Notifications: one row per recipient event; read_at NULL = unread
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			recipient_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			type VARCHAR(50) NOT NULL,
			title VARCHAR(255) NOT NULL,
			message TEXT NOT NULL,
			entry_id VARCHAR(24),
			note_id UUID,
			thread_id UUID,
			read_at TIMESTAMP
		)`,

		// Create indexes for better performance
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
		`CREATE INDEX IF NOT EXISTS idx_users_username_lower ON users(LOWER(username))`,
		`CREATE INDEX IF NOT EXISTS idx_connections_patient_id ON connections(patient_id)`,
		`CREATE INDEX IF NOT EXISTS idx_connections_professional_id ON connections(professional_id)`,
		`CREATE INDEX IF NOT EXISTS idx_threads_patient_id ON threads(patient_id)`,
		`CREATE INDEX IF NOT EXISTS idx_threads_professional_id ON threads(professional_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_patient_id ON notes(patient_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_author_id ON notes(author_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_thread_id ON notes(thread_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_entry_id ON notes(entry_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_recipient_id ON notifications(recipient_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications(recipient_id) WHERE read_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications(created_at)`,
	}

	for _, query := range queries {
		if _, err := PostgresDB.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
