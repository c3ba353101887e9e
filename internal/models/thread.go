package models

import (
	"time"
)

// Thread is a conversation scope unique per (patient, professional,
// specialty), created lazily on first threaded comment.
type Thread struct {
	ID             string    `json:"id"`
	PatientID      string    `json:"patient_id"`
	ProfessionalID string    `json:"professional_id"`
	Specialty      Specialty `json:"specialty"`
	CreatedAt      time.Time `json:"created_at"`
}
