package clinical

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelia-health/aurelia-backend/internal/models"
)

func TestDispatcherNotifyAndCount(t *testing.T) {
	ctx := context.Background()
	store := &memNotifications{}
	d := &Dispatcher{Store: store, Feed: &memFeed{}}

	n1, err := d.Notify(ctx, patientUser.ID, models.NotificationNoteShared, "New shared note", "A note was shared with you", NotificationRefs{NoteID: "n-1"})
	require.NoError(t, err)
	require.NotEmpty(t, n1.ID)

	_, err = d.Notify(ctx, patientUser.ID, models.NotificationConnectionAdded, "New care connection", "dr-ada connected", NotificationRefs{})
	require.NoError(t, err)
	_, err = d.Notify(ctx, psychUser.ID, models.NotificationNoteShared, "New shared note", "patient replied", NotificationRefs{NoteID: "n-2"})
	require.NoError(t, err)

	count, err := d.UnreadCount(ctx, patientUser.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	list, err := d.List(ctx, patientUser.ID, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestMarkReadIsMonotonic(t *testing.T) {
	ctx := context.Background()
	store := &memNotifications{}
	d := &Dispatcher{Store: store}

	n, err := d.Notify(ctx, patientUser.ID, models.NotificationNoteShared, "t", "m", NotificationRefs{})
	require.NoError(t, err)

	require.NoError(t, d.MarkRead(ctx, n.ID))
	first := store.rows[0].ReadAt
	require.NotNil(t, first)

	// Marking again never reverts or moves the read time.
	require.NoError(t, d.MarkRead(ctx, n.ID))
	assert.Equal(t, first, store.rows[0].ReadAt)

	count, err := d.UnreadCount(ctx, patientUser.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkAllRead(t *testing.T) {
	ctx := context.Background()
	store := &memNotifications{}
	d := &Dispatcher{Store: store}

	for i := 0; i < 3; i++ {
		_, err := d.Notify(ctx, patientUser.ID, models.NotificationNoteShared, "t", "m", NotificationRefs{})
		require.NoError(t, err)
	}
	_, err := d.Notify(ctx, psychUser.ID, models.NotificationNoteShared, "t", "m", NotificationRefs{})
	require.NoError(t, err)

	require.NoError(t, d.MarkAllRead(ctx, patientUser.ID))

	count, err := d.UnreadCount(ctx, patientUser.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Other recipients are untouched.
	count, err = d.UnreadCount(ctx, psychUser.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
