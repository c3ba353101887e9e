package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aurelia-health/aurelia-backend/internal/clinical"
	"github.com/aurelia-health/aurelia-backend/internal/services"
)

// extractBearerToken pulls the session token out of an Authorization header.
func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// requireAuth validates the session and returns the authenticated identity.
// Returns (zero, false) if not authenticated.
func requireAuth(r *http.Request) (services.SessionIdentity, bool) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return services.SessionIdentity{}, false
	}
	identity, ok, err := services.ValidateSession(token)
	if err != nil || !ok {
		return services.SessionIdentity{}, false
	}
	return identity, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is the shared failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Success: false, Message: message})
}

// writeEngineError maps the engine's sentinel errors onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, clinical.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, clinical.ErrRoleMismatch):
		writeError(w, http.StatusForbidden, "Not allowed for this account")
	case errors.Is(err, clinical.ErrSpecialtyIsolation):
		writeError(w, http.StatusForbidden, "Not visible to your specialty")
	case errors.Is(err, clinical.ErrAlreadyConnected):
		writeError(w, http.StatusConflict, "Already connected")
	case errors.Is(err, clinical.ErrAlreadyExists), errors.Is(err, clinical.ErrConflict):
		writeError(w, http.StatusConflict, "Conflicting state")
	default:
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
}
