package clinical

import (
	"context"
	"fmt"
	"log"

	"github.com/aurelia-health/aurelia-backend/internal/models"
	"github.com/aurelia-health/aurelia-backend/internal/visibility"
)

// EntryService owns the journal entry write path and the two read paths
// (owner dashboard, professional dashboard). Entries are only ever mutated
// by their owning patient; professionals read through the resolver.
type EntryService struct {
	Entries     EntryStore
	Connections ConnectionStore
	Dispatcher  *Dispatcher
	Audit       AuditSink
	Feed        FeedPublisher
}

// normalize enforces the lock invariant and recomputes the visibility
// policy. Locked entries carry no flags and no permissions.
func normalize(entry *models.Entry) {
	if entry.Locked {
		entry.VisibleToPsychologist = nil
		entry.VisibleToPsychiatrist = nil
		entry.Permissions = nil
	}
	entry.Policy = visibility.PolicyFor(*entry)
}

// Create persists a new entry for its owning patient.
func (s *EntryService) Create(ctx context.Context, entry *models.Entry) error {
	normalize(entry)
	if err := s.Entries.Create(ctx, entry); err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	s.notifyGrants(ctx, *entry, entry.Permissions)
	s.publishChange(ctx, *entry, "entry.created")
	return nil
}

// Update applies a patient edit (content, mood, lock flag, visibility
// fields, permissions). Only the owner may update.
func (s *EntryService) Update(ctx context.Context, ownerID string, entry *models.Entry) error {
	existing, err := s.Entries.GetByID(ctx, entry.ID.Hex())
	if err != nil {
		return err
	}
	if existing.PatientID != ownerID {
		return ErrRoleMismatch
	}
	entry.PatientID = existing.PatientID
	entry.CreatedAt = existing.CreatedAt
	normalize(entry)
	if err := s.Entries.Update(ctx, entry); err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	s.notifyGrants(ctx, *entry, newGrants(existing.Permissions, entry.Permissions))
	s.publishChange(ctx, *entry, "entry.updated")
	return nil
}

// newGrants returns the professional ids present in after but not before.
func newGrants(before, after []string) []string {
	known := make(map[string]bool, len(before))
	for _, id := range before {
		known[id] = true
	}
	var added []string
	for _, id := range after {
		if !known[id] {
			added = append(added, id)
		}
	}
	return added
}

// notifyGrants tells each newly permitted professional that an entry was
// explicitly shared with them. Soft-fail: a missed notification never
// fails the entry write.
func (s *EntryService) notifyGrants(ctx context.Context, entry models.Entry, grantedIDs []string) {
	if s.Dispatcher == nil {
		return
	}
	for _, professionalID := range grantedIDs {
		if professionalID == "" {
			continue
		}
		if _, err := s.Dispatcher.Notify(ctx, professionalID, models.NotificationEntryShared,
			"Entry shared with you", "A patient shared a journal entry with you directly",
			NotificationRefs{EntryID: entry.ID.Hex()}); err != nil {
			log.Printf("entry share notification failed: %v", err)
		}
	}
}

// Delete removes an entry owned by ownerID.
func (s *EntryService) Delete(ctx context.Context, entryID, ownerID string) error {
	return s.Entries.Delete(ctx, entryID, ownerID)
}

// ListForOwner returns the patient's own entries, newest first. Read path
// for the acting user is read-after-write: straight store read, no cache.
func (s *EntryService) ListForOwner(ctx context.Context, ownerID string) ([]models.Entry, error) {
	return s.Entries.ListByOwner(ctx, ownerID)
}

// ListForProfessional returns a connected professional's view of a
// patient's entries, filtered through the resolver, and audits the read.
func (s *EntryService) ListForProfessional(ctx context.Context, viewer models.Viewer, patientID string) ([]models.Entry, error) {
	if !viewer.IsProfessional() {
		return nil, ErrRoleMismatch
	}
	connected, err := s.Connections.Exists(ctx, patientID, viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("check connection: %w", err)
	}
	if !connected {
		// Surfaces as "no data" to the UI; the distinction lives in the log.
		return []models.Entry{}, nil
	}

	entries, err := s.Entries.ListByOwner(ctx, patientID)
	if err != nil {
		return nil, err
	}
	filtered := visibility.FilterEntries(entries, viewer)

	if s.Audit != nil {
		if err := s.Audit.Append(ctx, models.AuditRecord{
			ActorID:  viewer.ID,
			Action:   models.AuditEntriesViewed,
			TargetID: patientID,
			Metadata: map[string]string{"specialty": string(viewer.Specialty)},
		}); err != nil {
			log.Printf("audit append failed (%s): %v", models.AuditEntriesViewed, err)
		}
	}

	return filtered, nil
}

// publishChange fans an entry mutation out to the owner and every
// professional the entry is currently visible to.
func (s *EntryService) publishChange(ctx context.Context, entry models.Entry, eventType string) {
	if s.Feed == nil {
		return
	}
	recipients := []string{entry.PatientID}
	conns, err := s.Connections.ListByPatient(ctx, entry.PatientID)
	if err != nil {
		log.Printf("changefeed recipients lookup failed: %v", err)
	} else {
		for _, c := range conns {
			viewer := models.Viewer{ID: c.ProfessionalID, Role: models.RoleProfessional, Specialty: c.ProfessionalSpecialty}
			if visibility.IsVisible(entry, viewer) {
				recipients = append(recipients, c.ProfessionalID)
			}
		}
	}
	s.Feed.Publish(ctx, recipients, eventType, map[string]string{
		"entry_id":   entry.ID.Hex(),
		"patient_id": entry.PatientID,
	})
}
