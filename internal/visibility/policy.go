package visibility

import (
	"github.com/aurelia-health/aurelia-backend/internal/models"
)

// DerivePolicy computes the single visibility policy value for an entry
// from its lock flag, tri-state specialty fields and permission list. It is
// the only place the fallback-open rule is interpreted; everything that
// reads an entry matches on the resulting policy.
//
// Rules:
//   - locked wins over everything: owner-only.
//   - fallback-open: when neither specialty flag is true the entry is open
//     to both specialties. An explicit false counts the same as unset here.
//   - when at least one flag is true, visibility is restricted to exactly
//     the flagged specialties plus any explicitly permitted professionals.
//     The other specialty's absence means "not visible", not fallback.
func DerivePolicy(locked bool, psychologist, psychiatrist *bool, permissions []string) models.VisibilityPolicy {
	if locked {
		return models.VisibilityPolicy{Kind: models.PolicyLocked}
	}

	var specialties []string
	if psychologist != nil && *psychologist {
		specialties = append(specialties, string(models.SpecialtyPsychologist))
	}
	if psychiatrist != nil && *psychiatrist {
		specialties = append(specialties, string(models.SpecialtyPsychiatrist))
	}

	if len(specialties) == 0 {
		// Nothing marked => both specialties may see it. The permission
		// list adds nothing on top of an open entry.
		return models.VisibilityPolicy{Kind: models.PolicyOpenToAll}
	}

	policy := models.VisibilityPolicy{
		Kind:        models.PolicyRestricted,
		Specialties: specialties,
	}
	for _, id := range permissions {
		if id != "" {
			policy.ProfessionalIDs = append(policy.ProfessionalIDs, id)
		}
	}
	return policy
}

// PolicyFor derives the policy from an entry's raw fields.
func PolicyFor(entry models.Entry) models.VisibilityPolicy {
	return DerivePolicy(entry.Locked, entry.VisibleToPsychologist, entry.VisibleToPsychiatrist, entry.Permissions)
}
