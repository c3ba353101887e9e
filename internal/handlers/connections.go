package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aurelia-health/aurelia-backend/internal/models"
)

type CreateConnectionRequest struct {
	PatientUsername string `json:"patient_username"`
}

type ConnectionResponse struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	Connection *models.Connection `json:"connection,omitempty"`
}

type ConnectionsResponse struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message,omitempty"`
	Connections []models.Connection `json:"connections"`
}

// CreateConnection lets a professional connect to a patient by username.
func CreateConnection(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if identity.Role != models.RoleProfessional {
		writeError(w, http.StatusForbidden, "Only professionals can create connections")
		return
	}

	var req CreateConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PatientUsername == "" {
		writeError(w, http.StatusBadRequest, "patient_username is required")
		return
	}

	conn, err := registry.Connect(r.Context(), identity.UserID, req.PatientUsername)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ConnectionResponse{
		Success:    true,
		Message:    "Connection created",
		Connection: &conn,
	})
}

// GetConnections lists the acting user's consent edges, from whichever side
// they sit on.
func GetConnections(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var (
		connections []models.Connection
		err         error
	)
	if identity.Role == models.RoleProfessional {
		connections, err = registry.ListForProfessional(r.Context(), identity.UserID)
	} else {
		connections, err = registry.ListForPatient(r.Context(), identity.UserID)
	}
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ConnectionsResponse{Success: true, Connections: connections})
}

// RevokeConnection lets a patient sever a connection. The cascade strips
// every explicit permission naming the professional before the edge goes.
func RevokeConnection(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if identity.Role != models.RolePatient {
		writeError(w, http.StatusForbidden, "Only patients can revoke connections")
		return
	}

	professionalID := chi.URLParam(r, "professionalID")
	if err := registry.Revoke(r.Context(), identity.UserID, professionalID); err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ConnectionResponse{Success: true, Message: "Connection revoked"})
}
