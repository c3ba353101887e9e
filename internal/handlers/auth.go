package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/aurelia-health/aurelia-backend/internal/database"
	"github.com/aurelia-health/aurelia-backend/internal/models"
	"github.com/aurelia-health/aurelia-backend/internal/services"
	"github.com/aurelia-health/aurelia-backend/pkg/utils"
)

type SignupRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	Specialty string `json:"specialty,omitempty"`
}

type SigninRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token,omitempty"`
	User    *models.User `json:"user,omitempty"`
}

// Signup registers a patient or professional account. Professionals must
// declare a specialty; patients must not.
func Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateUsername(req.Username); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	role := models.Role(req.Role)
	if role == "" {
		role = models.RolePatient
	}
	specialty := models.Specialty(req.Specialty)
	switch role {
	case models.RolePatient:
		if specialty != "" {
			writeError(w, http.StatusBadRequest, "Patients cannot declare a specialty")
			return
		}
	case models.RoleProfessional:
		if !models.ValidSpecialty(specialty) {
			writeError(w, http.StatusBadRequest, "Professionals must declare a specialty (psychologist or psychiatrist)")
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "Role must be patient or professional")
		return
	}

	normalizedUsername := utils.NormalizeUsername(req.Username)

	var existingUsername string
	err := database.PostgresDB.QueryRow(
		"SELECT username FROM users WHERE LOWER(username) = $1",
		normalizedUsername,
	).Scan(&existingUsername)
	if err == nil {
		writeError(w, http.StatusConflict, "Username is already taken")
		return
	} else if err != sql.ErrNoRows {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	specialtyValue := sql.NullString{String: string(specialty), Valid: specialty != ""}
	user := models.User{
		Username:  normalizedUsername,
		Role:      role,
		Specialty: specialty,
		IsActive:  true,
	}
	err = database.PostgresDB.QueryRow(`
		INSERT INTO users (username, password_hash, role, specialty, created_at, is_active)
		VALUES ($1, $2, $3, $4, NOW(), TRUE)
		RETURNING id, created_at
	`, normalizedUsername, hashedPassword, role, specialtyValue).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "Account created successfully",
		User:    &user,
	})
}

// Signin verifies credentials and opens a session.
func Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	normalizedUsername := utils.NormalizeUsername(req.Username)

	var user models.User
	var passwordHash string
	var specialty sql.NullString
	var createdAt time.Time
	err := database.PostgresDB.QueryRow(`
		SELECT id, username, password_hash, role, specialty, created_at, is_active
		FROM users
		WHERE LOWER(username) = $1
	`, normalizedUsername).Scan(&user.ID, &user.Username, &passwordHash, &user.Role, &specialty, &createdAt, &user.IsActive)
	if err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusUnauthorized, "Invalid username or password")
		} else {
			writeError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}
	user.CreatedAt = createdAt
	if specialty.Valid {
		user.Specialty = models.Specialty(specialty.String)
	}

	if !user.IsActive {
		writeError(w, http.StatusForbidden, "Account is inactive")
		return
	}

	valid, err := utils.VerifyPassword(req.Password, passwordHash)
	if err != nil || !valid {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := services.CreateSession(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User:    &user,
	})
}

// Signout invalidates the current session.
func Signout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token != "" {
		services.InvalidateSession(token)
	}
	writeJSON(w, http.StatusOK, AuthResponse{Success: true, Message: "Signed out"})
}

// Me returns the identity behind the current session.
func Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"id":        identity.UserID,
			"username":  identity.Username,
			"role":      identity.Role,
			"specialty": identity.Specialty,
		},
	})
}
