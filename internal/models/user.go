package models

import (
	"time"
)

// Role identifies the kind of account acting on the system.
type Role string

const (
	RolePatient      Role = "patient"
	RoleProfessional Role = "professional"
	RoleAdmin        Role = "admin"
)

// Specialty is the clinical category of a professional account.
// It drives isolation of notes and threads.
type Specialty string

const (
	SpecialtyPsychologist Specialty = "psychologist"
	SpecialtyPsychiatrist Specialty = "psychiatrist"
)

// ValidSpecialty reports whether s is a known specialty tag.
func ValidSpecialty(s Specialty) bool {
	return s == SpecialtyPsychologist || s == SpecialtyPsychiatrist
}

// User represents the public profile (anonymous identity)
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	Specialty Specialty `json:"specialty,omitempty"` // empty unless Role is professional
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`

	// Internal only - never returned in JSON
	PasswordHash string `json:"-"`
}

// Viewer is the acting identity a read is evaluated against.
// Built from the session by the identity layer.
type Viewer struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Specialty Specialty `json:"specialty,omitempty"`
}

// IsProfessional reports whether the viewer is a professional account.
func (v Viewer) IsProfessional() bool {
	return v.Role == RoleProfessional
}
