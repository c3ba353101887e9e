package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aurelia-health/aurelia-backend/internal/clinical"
	"github.com/aurelia-health/aurelia-backend/internal/models"
)

// ExportReport builds an offline report of a patient's record as visible to
// the requester and renders it as JSON or CSV. The report re-applies the
// same filters as the live view, so it can never contain more than the
// requester could read interactively.
//
// Query parameters: patient_id (professionals only; patients export their
// own record), from/to (RFC 3339 or YYYY-MM-DD), content (entries, notes,
// both), specialty (narrowing note filter), format (json, csv).
func ExportReport(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	patientID := r.URL.Query().Get("patient_id")
	if identity.Role == models.RolePatient {
		patientID = identity.UserID
	}
	if patientID == "" {
		writeError(w, http.StatusBadRequest, "patient_id is required")
		return
	}

	from, err := parseReportTime(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date")
		return
	}
	to, err := parseReportTime(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date")
		return
	}

	var entries []models.Entry
	var notes []models.Note
	if identity.Role == models.RolePatient {
		entries, err = entryStore.ListByOwner(r.Context(), patientID)
		if err == nil {
			notes, err = noteStore.ListByPatient(r.Context(), patientID)
		}
		if err != nil {
			writeEngineError(w, err)
			return
		}
	} else {
		// A professional exporting an unconnected patient gets the same
		// "no data" view as the live dashboard.
		connected, cerr := connectionStore.Exists(r.Context(), patientID, identity.UserID)
		if cerr != nil {
			writeEngineError(w, cerr)
			return
		}
		if connected {
			entries, err = entryStore.ListByOwner(r.Context(), patientID)
			if err == nil {
				notes, err = noteStore.ListByPatient(r.Context(), patientID)
			}
			if err != nil {
				writeEngineError(w, err)
				return
			}
		}
	}

	doc, err := clinical.BuildReport(entries, notes, clinical.ReportConfig{
		From:               from,
		To:                 to,
		Requester:          identity.Viewer(),
		ProfessionalFilter: models.Specialty(r.URL.Query().Get("specialty")),
		Content:            clinical.ContentFilter(r.URL.Query().Get("content")),
	})
	if err != nil {
		// A cross-specialty export attempt is recorded even though it fails.
		if errors.Is(err, clinical.ErrSpecialtyIsolation) {
			auditor.Record(r.Context(), identity.UserID, models.AuditIsolationViolation, patientID, map[string]string{
				"requested_specialty": r.URL.Query().Get("specialty"),
				"actor_specialty":     string(identity.Specialty),
			})
		}
		writeEngineError(w, err)
		return
	}

	auditor.Record(r.Context(), identity.UserID, models.AuditExportBuilt, patientID, map[string]string{
		"entries": strconv.Itoa(len(doc.Entries)),
		"notes":   strconv.Itoa(len(doc.Notes)),
	})

	if r.URL.Query().Get("format") == "csv" {
		renderReportCSV(w, doc)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func parseReportTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func renderReportCSV(w http.ResponseWriter, doc clinical.ReportDocument) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="report.csv"`)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	cw.Write([]string{"kind", "id", "created_at", "mood_score", "content", "status", "shared", "author_role"})
	for _, e := range doc.Entries {
		mood := ""
		if e.MoodScore != nil {
			mood = strconv.Itoa(*e.MoodScore)
		}
		cw.Write([]string{
			"entry",
			e.ID.Hex(),
			e.CreatedAt.Format(time.RFC3339),
			mood,
			e.Content,
			"",
			"",
			"",
		})
	}
	for _, n := range doc.Notes {
		cw.Write([]string{
			"note",
			n.ID,
			n.CreatedAt.Format(time.RFC3339),
			"",
			n.Content,
			string(n.Status),
			fmt.Sprintf("%t", n.Shared),
			string(n.AuthorRole),
		})
	}
}
