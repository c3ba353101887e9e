package clinical

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelia-health/aurelia-backend/internal/models"
	"github.com/aurelia-health/aurelia-backend/internal/visibility"
)

var (
	patientUser = models.User{ID: "patient-1", Username: "quietriver", Role: models.RolePatient, IsActive: true}
	psychUser   = models.User{ID: "prof-a", Username: "dr-ada", Role: models.RoleProfessional, Specialty: models.SpecialtyPsychologist, IsActive: true}
	psychiaUser = models.User{ID: "prof-b", Username: "dr-bell", Role: models.RoleProfessional, Specialty: models.SpecialtyPsychiatrist, IsActive: true}
)

func newTestRegistry() (*Registry, *memEntries, *memNotifications, *memAudit) {
	users := newMemUsers(patientUser, psychUser, psychiaUser)
	entries := &memEntries{}
	notifications := &memNotifications{}
	audit := &memAudit{}
	reg := &Registry{
		Users:       users,
		Connections: &memConnections{users: users},
		Entries:     entries,
		Dispatcher:  &Dispatcher{Store: notifications},
		Audit:       audit,
		Feed:        &memFeed{},
	}
	return reg, entries, notifications, audit
}

func TestConnect(t *testing.T) {
	ctx := context.Background()

	t.Run("success notifies the patient", func(t *testing.T) {
		reg, _, notifications, _ := newTestRegistry()

		conn, err := reg.Connect(ctx, psychUser.ID, patientUser.Username)
		require.NoError(t, err)
		assert.Equal(t, patientUser.ID, conn.PatientID)
		assert.Equal(t, psychUser.ID, conn.ProfessionalID)

		require.Len(t, notifications.rows, 1)
		assert.Equal(t, patientUser.ID, notifications.rows[0].RecipientID)
		assert.Equal(t, models.NotificationConnectionAdded, notifications.rows[0].Type)
	})

	t.Run("unknown patient", func(t *testing.T) {
		reg, _, _, _ := newTestRegistry()
		_, err := reg.Connect(ctx, psychUser.ID, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("target is not a patient", func(t *testing.T) {
		reg, _, _, _ := newTestRegistry()
		_, err := reg.Connect(ctx, psychUser.ID, psychiaUser.Username)
		assert.ErrorIs(t, err, ErrRoleMismatch)
	})

	t.Run("caller is not a professional", func(t *testing.T) {
		reg, _, _, _ := newTestRegistry()
		_, err := reg.Connect(ctx, patientUser.ID, patientUser.Username)
		assert.ErrorIs(t, err, ErrRoleMismatch)
	})

	t.Run("duplicate edge", func(t *testing.T) {
		reg, _, _, _ := newTestRegistry()
		_, err := reg.Connect(ctx, psychUser.ID, patientUser.Username)
		require.NoError(t, err)
		_, err = reg.Connect(ctx, psychUser.ID, patientUser.Username)
		assert.ErrorIs(t, err, ErrAlreadyConnected)
	})
}

func TestListConnections(t *testing.T) {
	ctx := context.Background()
	reg, _, _, _ := newTestRegistry()

	_, err := reg.Connect(ctx, psychUser.ID, patientUser.Username)
	require.NoError(t, err)
	_, err = reg.Connect(ctx, psychiaUser.ID, patientUser.Username)
	require.NoError(t, err)

	forPatient, err := reg.ListForPatient(ctx, patientUser.ID)
	require.NoError(t, err)
	assert.Len(t, forPatient, 2)

	forProfessional, err := reg.ListForProfessional(ctx, psychUser.ID)
	require.NoError(t, err)
	assert.Len(t, forProfessional, 1)
}

func TestRevokeCascade(t *testing.T) {
	ctx := context.Background()
	reg, entries, _, audit := newTestRegistry()

	_, err := reg.Connect(ctx, psychUser.ID, patientUser.Username)
	require.NoError(t, err)

	// Entry explicitly shared with the psychologist on top of a
	// psychiatrist-only restriction.
	yes := true
	restricted := models.Entry{
		PatientID:             patientUser.ID,
		Content:               "restricted",
		VisibleToPsychiatrist: &yes,
		Permissions:           []string{psychUser.ID},
	}
	restricted.Policy = visibility.PolicyFor(restricted)
	require.NoError(t, entries.Create(ctx, &restricted))

	open := models.Entry{PatientID: patientUser.ID, Content: "open"}
	open.Policy = visibility.PolicyFor(open)
	require.NoError(t, entries.Create(ctx, &open))

	viewerA := models.Viewer{ID: psychUser.ID, Role: models.RoleProfessional, Specialty: models.SpecialtyPsychologist}
	require.True(t, visibility.IsVisible(restricted, viewerA), "permitted before revocation")

	require.NoError(t, reg.Revoke(ctx, patientUser.ID, psychUser.ID))

	// No entry owned by the patient still names the professional.
	after, err := entries.ListByOwner(ctx, patientUser.ID)
	require.NoError(t, err)
	for _, e := range after {
		assert.NotContains(t, e.Permissions, psychUser.ID)
		if e.Content == "restricted" {
			assert.False(t, visibility.IsVisible(e, viewerA), "stale permission must not survive revocation")
		}
		if e.Content == "open" {
			// Still covered by the fallback-open rule.
			assert.True(t, visibility.IsVisible(e, viewerA))
		}
	}

	connected, err := reg.Connections.Exists(ctx, patientUser.ID, psychUser.ID)
	require.NoError(t, err)
	assert.False(t, connected)

	assert.Contains(t, audit.actions(), models.AuditConnectionRevoked)
}

func TestRevokeNotifiesProfessional(t *testing.T) {
	ctx := context.Background()
	reg, _, notifications, _ := newTestRegistry()

	_, err := reg.Connect(ctx, psychUser.ID, patientUser.Username)
	require.NoError(t, err)
	require.NoError(t, reg.Revoke(ctx, patientUser.ID, psychUser.ID))

	// One row for the connect (to the patient), one for the revoke (to
	// the professional).
	require.Len(t, notifications.rows, 2)
	revoked := notifications.rows[1]
	assert.Equal(t, psychUser.ID, revoked.RecipientID)
	assert.Equal(t, models.NotificationConnectionRevoked, revoked.Type)
	assert.Contains(t, revoked.Message, patientUser.Username)
}

func TestRevokeMissingEdge(t *testing.T) {
	reg, _, _, _ := newTestRegistry()
	err := reg.Revoke(context.Background(), patientUser.ID, psychUser.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
