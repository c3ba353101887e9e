package visibility

import (
	"github.com/aurelia-health/aurelia-backend/internal/models"
)

// IsVisible reports whether viewer may see entry. It is a pure, total
// predicate with no side effects, called identically from the live read
// path and the export path. Results are never cached across requests.
func IsVisible(entry models.Entry, viewer models.Viewer) bool {
	// The owner sees everything, locked or not.
	if viewer.Role == models.RolePatient {
		return viewer.ID == entry.PatientID
	}

	if !viewer.IsProfessional() {
		return false
	}

	policy := entry.Policy
	if policy.Kind == "" {
		// Entries written before policy computation; derive on the fly.
		policy = PolicyFor(entry)
	}

	switch policy.Kind {
	case models.PolicyLocked:
		return false
	case models.PolicyOpenToAll:
		return true
	case models.PolicyRestricted:
		for _, s := range policy.Specialties {
			if s == string(viewer.Specialty) {
				return true
			}
		}
		for _, id := range policy.ProfessionalIDs {
			if id == viewer.ID {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// FilterEntries returns the subset of entries visible to viewer, preserving
// order. Shared by the professional dashboard and the export filter.
func FilterEntries(entries []models.Entry, viewer models.Viewer) []models.Entry {
	out := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if IsVisible(e, viewer) {
			out = append(out, e)
		}
	}
	return out
}
