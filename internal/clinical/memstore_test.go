package clinical

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aurelia-health/aurelia-backend/internal/models"
	"github.com/aurelia-health/aurelia-backend/internal/visibility"
)

// In-memory store fakes mirroring the Postgres/Mongo behaviors the engine
// depends on: uniqueness constraints, monotonic reads, permission strips.

type memUsers struct {
	byID map[string]models.User
}

func newMemUsers(users ...models.User) *memUsers {
	m := &memUsers{byID: make(map[string]models.User)}
	for _, u := range users {
		m.byID[u.ID] = u
	}
	return m
}

func (m *memUsers) GetByID(_ context.Context, id string) (models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (models.User, error) {
	for _, u := range m.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

type memConnections struct {
	mu    sync.Mutex
	edges []models.Connection
	users *memUsers
}

func (m *memConnections) Insert(_ context.Context, patientID, professionalID string) (models.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.edges {
		if e.PatientID == patientID && e.ProfessionalID == professionalID {
			return models.Connection{}, ErrAlreadyConnected
		}
	}
	conn := models.Connection{
		ID:             uuid.New().String(),
		PatientID:      patientID,
		ProfessionalID: professionalID,
		CreatedAt:      time.Now(),
	}
	if m.users != nil {
		if p, ok := m.users.byID[professionalID]; ok {
			conn.ProfessionalSpecialty = p.Specialty
		}
	}
	m.edges = append(m.edges, conn)
	return conn, nil
}

func (m *memConnections) Delete(_ context.Context, patientID, professionalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.edges {
		if e.PatientID == patientID && e.ProfessionalID == professionalID {
			m.edges = append(m.edges[:i], m.edges[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memConnections) Exists(_ context.Context, patientID, professionalID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.edges {
		if e.PatientID == patientID && e.ProfessionalID == professionalID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memConnections) ListByPatient(_ context.Context, patientID string) ([]models.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Connection
	for _, e := range m.edges {
		if e.PatientID == patientID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memConnections) ListByProfessional(_ context.Context, professionalID string) ([]models.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Connection
	for _, e := range m.edges {
		if e.ProfessionalID == professionalID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memThreads struct {
	mu      sync.Mutex
	threads []models.Thread
}

func (m *memThreads) Insert(_ context.Context, thread *models.Thread) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.threads {
		if t.PatientID == thread.PatientID && t.ProfessionalID == thread.ProfessionalID && t.Specialty == thread.Specialty {
			return ErrConflict
		}
	}
	thread.ID = uuid.New().String()
	thread.CreatedAt = time.Now()
	m.threads = append(m.threads, *thread)
	return nil
}

func (m *memThreads) Find(_ context.Context, patientID, professionalID string, specialty models.Specialty) (models.Thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.threads {
		if t.PatientID == patientID && t.ProfessionalID == professionalID && t.Specialty == specialty {
			return t, nil
		}
	}
	return models.Thread{}, ErrNotFound
}

func (m *memThreads) GetByID(_ context.Context, threadID string) (models.Thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.threads {
		if t.ID == threadID {
			return t, nil
		}
	}
	return models.Thread{}, ErrNotFound
}

type memNotes struct {
	mu    sync.Mutex
	notes []models.Note
}

func (m *memNotes) Insert(_ context.Context, note *models.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	note.ID = uuid.New().String()
	note.CreatedAt = time.Now()
	note.UpdatedAt = note.CreatedAt
	m.notes = append(m.notes, *note)
	return nil
}

func (m *memNotes) GetByID(_ context.Context, noteID string) (models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notes {
		if n.ID == noteID {
			return n, nil
		}
	}
	return models.Note{}, ErrNotFound
}

func (m *memNotes) ListByPatient(_ context.Context, patientID string) ([]models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Note
	for _, n := range m.notes {
		if n.PatientID == patientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memNotes) UpdateStatus(_ context.Context, noteID string, status models.NoteStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notes {
		if m.notes[i].ID == noteID {
			m.notes[i].Status = status
			return nil
		}
	}
	return ErrNotFound
}

type memNotifications struct {
	mu         sync.Mutex
	rows       []models.Notification
	failInsert bool
}

func (m *memNotifications) Insert(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsert {
		return ErrConflict
	}
	n.ID = uuid.New().String()
	n.CreatedAt = time.Now()
	m.rows = append(m.rows, *n)
	return nil
}

func (m *memNotifications) List(_ context.Context, recipientID string, limit int) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, n := range m.rows {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memNotifications) MarkRead(_ context.Context, notificationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == notificationID && m.rows[i].ReadAt == nil {
			now := time.Now()
			m.rows[i].ReadAt = &now
		}
	}
	return nil
}

func (m *memNotifications) MarkAllRead(_ context.Context, recipientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for i := range m.rows {
		if m.rows[i].RecipientID == recipientID && m.rows[i].ReadAt == nil {
			m.rows[i].ReadAt = &now
		}
	}
	return nil
}

func (m *memNotifications) UnreadCount(_ context.Context, recipientID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.rows {
		if n.RecipientID == recipientID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

type memEntries struct {
	mu      sync.Mutex
	entries []models.Entry
}

func (m *memEntries) Create(_ context.Context, entry *models.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memEntries) Update(_ context.Context, entry *models.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entries {
		if m.entries[i].ID == entry.ID {
			entry.UpdatedAt = time.Now()
			m.entries[i] = *entry
			return nil
		}
	}
	return ErrNotFound
}

func (m *memEntries) Delete(_ context.Context, entryID, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID.Hex() == entryID && e.PatientID == ownerID {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memEntries) GetByID(_ context.Context, entryID string) (models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID.Hex() == entryID {
			return e, nil
		}
	}
	return models.Entry{}, ErrNotFound
}

func (m *memEntries) ListByOwner(_ context.Context, ownerID string) ([]models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Entry
	for _, e := range m.entries {
		if e.PatientID == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEntries) StripPermission(_ context.Context, ownerID, professionalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entries {
		if m.entries[i].PatientID != ownerID {
			continue
		}
		var kept []string
		for _, id := range m.entries[i].Permissions {
			if id != professionalID {
				kept = append(kept, id)
			}
		}
		m.entries[i].Permissions = kept
		m.entries[i].Policy = visibility.PolicyFor(m.entries[i])
	}
	return nil
}

type memAudit struct {
	mu      sync.Mutex
	records []models.AuditRecord
}

func (m *memAudit) Append(_ context.Context, record models.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record.CreatedAt = time.Now()
	m.records = append(m.records, record)
	return nil
}

func (m *memAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r.Action)
	}
	return out
}

type feedEvent struct {
	recipients []string
	eventType  string
	payload    map[string]string
}

type memFeed struct {
	mu     sync.Mutex
	events []feedEvent
}

func (m *memFeed) Publish(_ context.Context, recipientIDs []string, eventType string, payload map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, feedEvent{recipients: recipientIDs, eventType: eventType, payload: payload})
}
