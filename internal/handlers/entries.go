package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aurelia-health/aurelia-backend/internal/models"
)

type EntryRequest struct {
	MoodScore     *int   `json:"mood_score,omitempty"`
	Content       string `json:"content"`
	AttachmentURL string `json:"attachment_url,omitempty"`

	Locked                bool     `json:"locked"`
	VisibleToPsychologist *bool    `json:"visible_to_psychologist,omitempty"`
	VisibleToPsychiatrist *bool    `json:"visible_to_psychiatrist,omitempty"`
	Permissions           []string `json:"permissions,omitempty"`
}

type EntryResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Entry   *models.Entry `json:"entry,omitempty"`
}

type EntriesResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Entries []models.Entry `json:"entries"`
}

// CreateEntry creates a journal entry for the authenticated patient.
func CreateEntry(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if identity.Role != models.RolePatient {
		writeError(w, http.StatusForbidden, "Only patients can write journal entries")
		return
	}

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Content == "" && req.MoodScore == nil {
		writeError(w, http.StatusBadRequest, "Content or mood score is required")
		return
	}
	if req.MoodScore != nil && (*req.MoodScore < 1 || *req.MoodScore > 10) {
		writeError(w, http.StatusBadRequest, "Mood score must be between 1 and 10")
		return
	}

	entry := models.Entry{
		PatientID:             identity.UserID,
		MoodScore:             req.MoodScore,
		Content:               req.Content,
		AttachmentURL:         req.AttachmentURL,
		Locked:                req.Locked,
		VisibleToPsychologist: req.VisibleToPsychologist,
		VisibleToPsychiatrist: req.VisibleToPsychiatrist,
		Permissions:           req.Permissions,
	}
	if err := entryService.Create(r.Context(), &entry); err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, EntryResponse{
		Success: true,
		Message: "Entry created successfully",
		Entry:   &entry,
	})
}

// GetEntries returns entries for the acting user. Patients read their own
// journal; professionals pass ?patient_id= and get the resolver-filtered
// view of that patient.
func GetEntries(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	patientID := r.URL.Query().Get("patient_id")
	if patientID == "" || patientID == identity.UserID {
		entries, err := entryService.ListForOwner(r.Context(), identity.UserID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, EntriesResponse{Success: true, Entries: entries})
		return
	}

	entries, err := entryService.ListForProfessional(r.Context(), identity.Viewer(), patientID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EntriesResponse{Success: true, Entries: entries})
}

// UpdateEntry applies a patient edit to one of their own entries.
func UpdateEntry(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	entryID := chi.URLParam(r, "id")
	oid, err := primitive.ObjectIDFromHex(entryID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Entry not found")
		return
	}

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.MoodScore != nil && (*req.MoodScore < 1 || *req.MoodScore > 10) {
		writeError(w, http.StatusBadRequest, "Mood score must be between 1 and 10")
		return
	}

	entry := models.Entry{
		ID:                    oid,
		MoodScore:             req.MoodScore,
		Content:               req.Content,
		AttachmentURL:         req.AttachmentURL,
		Locked:                req.Locked,
		VisibleToPsychologist: req.VisibleToPsychologist,
		VisibleToPsychiatrist: req.VisibleToPsychiatrist,
		Permissions:           req.Permissions,
	}
	if err := entryService.Update(r.Context(), identity.UserID, &entry); err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, EntryResponse{
		Success: true,
		Message: "Entry updated successfully",
		Entry:   &entry,
	})
}

// DeleteEntry removes one of the authenticated patient's entries.
func DeleteEntry(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	entryID := chi.URLParam(r, "id")
	if err := entryService.Delete(r.Context(), entryID, identity.UserID); err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, EntryResponse{Success: true, Message: "Entry deleted"})
}
