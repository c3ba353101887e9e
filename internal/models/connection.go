package models

import (
	"time"
)

// Connection is a consent edge between a patient and a professional. While
// the edge exists the professional appears as a candidate viewer for the
// patient's data; revoking it cascades into the entries' permission lists.
type Connection struct {
	ID             string    `json:"id"`
	PatientID      string    `json:"patient_id"`
	ProfessionalID string    `json:"professional_id"`
	CreatedAt      time.Time `json:"created_at"`

	// Denormalized for list responses
	PatientUsername       string    `json:"patient_username,omitempty"`
	ProfessionalUsername  string    `json:"professional_username,omitempty"`
	ProfessionalSpecialty Specialty `json:"professional_specialty,omitempty"`
}
