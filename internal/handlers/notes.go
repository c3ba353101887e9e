package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aurelia-health/aurelia-backend/internal/models"
)

type CreateThreadRequest struct {
	PatientID      string `json:"patient_id"`
	ProfessionalID string `json:"professional_id,omitempty"`
	Specialty      string `json:"specialty"`
}

type ThreadResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Thread  *models.Thread `json:"thread,omitempty"`
}

type CreateNoteRequest struct {
	PatientID string `json:"patient_id,omitempty"`
	ThreadID  string `json:"thread_id,omitempty"`
	EntryID   string `json:"entry_id,omitempty"`
	Content   string `json:"content"`
	Shared    bool   `json:"shared"`
}

type NoteResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Warning string       `json:"warning,omitempty"`
	Note    *models.Note `json:"note,omitempty"`
}

type NotesResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Notes   []models.Note `json:"notes"`
}

type UpdateNoteStatusRequest struct {
	Status string `json:"status"`
}

// CreateThread returns the thread for (patient, professional, specialty),
// creating it if absent. Professionals thread with their own specialty;
// patients name the professional they want to talk to.
func CreateThread(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateThreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var patientID, professionalID string
	switch identity.Role {
	case models.RoleProfessional:
		patientID = req.PatientID
		professionalID = identity.UserID
		// A professional always threads under their own specialty; the
		// request body cannot override it.
		req.Specialty = string(identity.Specialty)
	case models.RolePatient:
		patientID = identity.UserID
		professionalID = req.ProfessionalID
	default:
		writeError(w, http.StatusForbidden, "Not allowed for this account")
		return
	}
	if patientID == "" || professionalID == "" {
		writeError(w, http.StatusBadRequest, "Patient and professional are required")
		return
	}

	thread, err := noteManager.GetOrCreateThread(r.Context(), patientID, professionalID, models.Specialty(req.Specialty))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ThreadResponse{Success: true, Thread: &thread})
}

// CreateNote saves a clinical note or threaded comment for the acting user.
func CreateNote(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "Content is required")
		return
	}

	patientID := req.PatientID
	if identity.Role == models.RolePatient {
		patientID = identity.UserID
	}
	if patientID == "" {
		writeError(w, http.StatusBadRequest, "patient_id is required")
		return
	}

	result, err := noteManager.SaveNote(r.Context(), models.Note{
		PatientID: patientID,
		AuthorID:  identity.UserID,
		ThreadID:  req.ThreadID,
		EntryID:   req.EntryID,
		Content:   req.Content,
		Shared:    req.Shared,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, NoteResponse{
		Success: true,
		Message: "Note saved",
		Warning: result.Warning,
		Note:    &result.Note,
	})
}

// GetNotes lists a patient's notes as visible to the acting user.
func GetNotes(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	patientID := r.URL.Query().Get("patient_id")
	if patientID == "" {
		patientID = identity.UserID
	}

	notes, err := noteManager.ListNotes(r.Context(), identity.Viewer(), patientID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NotesResponse{Success: true, Notes: notes})
}

// UpdateNoteStatus moves a note through its lifecycle (resolve, hide).
func UpdateNoteStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req UpdateNoteStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	noteID := chi.URLParam(r, "id")
	note, err := noteManager.UpdateNoteStatus(r.Context(), identity.Viewer(), noteID, models.NoteStatus(req.Status))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NoteResponse{Success: true, Message: "Status updated", Note: &note})
}
