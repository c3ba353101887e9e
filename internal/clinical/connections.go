package clinical

import (
	"context"
	"fmt"
	"log"

	"github.com/aurelia-health/aurelia-backend/internal/models"
)

// Registry tracks patient-professional consent edges and their lifecycle.
type Registry struct {
	Users       UserStore
	Connections ConnectionStore
	Entries     EntryStore
	Dispatcher  *Dispatcher
	Audit       AuditSink
	Feed        FeedPublisher
}

// Connect creates a consent edge from a professional lookup of a patient by
// username. Fails with ErrNotFound when no such user exists, ErrRoleMismatch
// when the target is not a patient, and ErrAlreadyConnected when the edge
// already exists.
func (r *Registry) Connect(ctx context.Context, professionalID, patientUsername string) (models.Connection, error) {
	professional, err := r.Users.GetByID(ctx, professionalID)
	if err != nil {
		return models.Connection{}, fmt.Errorf("load professional: %w", err)
	}
	if professional.Role != models.RoleProfessional {
		return models.Connection{}, ErrRoleMismatch
	}

	patient, err := r.Users.GetByUsername(ctx, patientUsername)
	if err != nil {
		return models.Connection{}, err
	}
	if patient.Role != models.RolePatient {
		// A professional may not connect to another professional.
		return models.Connection{}, ErrRoleMismatch
	}

	conn, err := r.Connections.Insert(ctx, patient.ID, professionalID)
	if err != nil {
		return models.Connection{}, err
	}

	if r.Dispatcher != nil {
		if _, derr := r.Dispatcher.Notify(ctx, patient.ID, models.NotificationConnectionAdded,
			"New care connection",
			fmt.Sprintf("%s is now connected to your journal", professional.Username),
			NotificationRefs{}); derr != nil {
			log.Printf("connection notification failed: %v", derr)
		}
	}
	r.audit(ctx, professionalID, models.AuditConnectionCreated, patient.ID, nil)
	if r.Feed != nil {
		r.Feed.Publish(ctx, []string{patient.ID, professionalID}, "connection.created", map[string]string{
			"patient_id":      patient.ID,
			"professional_id": professionalID,
		})
	}

	return conn, nil
}

// ListForPatient returns the patient's consent edges.
func (r *Registry) ListForPatient(ctx context.Context, patientID string) ([]models.Connection, error) {
	return r.Connections.ListByPatient(ctx, patientID)
}

// ListForProfessional returns the professional's consent edges.
func (r *Registry) ListForProfessional(ctx context.Context, professionalID string) ([]models.Connection, error) {
	return r.Connections.ListByProfessional(ctx, professionalID)
}

// Revoke removes a consent edge and cascades: every permission entry naming
// the professional is stripped from the patient's entries.
//
// Entries and edges live in different stores, so the cascade runs strip
// first, delete second. If the delete fails the patient is still connected
// but no longer explicitly permitted, which is a valid serialization; the
// reverse order could leave a revoked professional holding a stale
// permission, which is the one state that must never occur.
func (r *Registry) Revoke(ctx context.Context, patientID, professionalID string) error {
	exists, err := r.Connections.Exists(ctx, patientID, professionalID)
	if err != nil {
		return fmt.Errorf("check connection: %w", err)
	}
	if !exists {
		return ErrNotFound
	}

	if err := r.Entries.StripPermission(ctx, patientID, professionalID); err != nil {
		return fmt.Errorf("strip permissions: %w", err)
	}
	if err := r.Connections.Delete(ctx, patientID, professionalID); err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}

	if r.Dispatcher != nil {
		message := "A patient has revoked your access to their journal"
		if patient, perr := r.Users.GetByID(ctx, patientID); perr == nil {
			message = fmt.Sprintf("%s has revoked your access to their journal", patient.Username)
		}
		if _, derr := r.Dispatcher.Notify(ctx, professionalID, models.NotificationConnectionRevoked,
			"Connection revoked", message, NotificationRefs{}); derr != nil {
			log.Printf("revocation notification failed: %v", derr)
		}
	}
	r.audit(ctx, patientID, models.AuditConnectionRevoked, professionalID, nil)
	if r.Feed != nil {
		r.Feed.Publish(ctx, []string{patientID, professionalID}, "connection.revoked", map[string]string{
			"patient_id":      patientID,
			"professional_id": professionalID,
		})
	}
	return nil
}

func (r *Registry) audit(ctx context.Context, actorID, action, targetID string, metadata map[string]string) {
	if r.Audit == nil {
		return
	}
	if err := r.Audit.Append(ctx, models.AuditRecord{
		ActorID:  actorID,
		Action:   action,
		TargetID: targetID,
		Metadata: metadata,
	}); err != nil {
		log.Printf("audit append failed (%s): %v", action, err)
	}
}
