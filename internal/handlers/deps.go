package handlers

import (
	"github.com/aurelia-health/aurelia-backend/internal/clinical"
	"github.com/aurelia-health/aurelia-backend/internal/services"
	"github.com/aurelia-health/aurelia-backend/internal/store"
)

// Engine services shared by the handler functions, wired once at startup.
var (
	entryService *clinical.EntryService
	registry     *clinical.Registry
	noteManager  *clinical.NoteManager
	dispatcher   *clinical.Dispatcher
	auditor      *clinical.Auditor

	entryStore      clinical.EntryStore
	noteStore       clinical.NoteStore
	connectionStore clinical.ConnectionStore
)

// InitEngine wires the engine services onto the concrete stores. Must run
// after the database connections are up.
func InitEngine() {
	users := store.PostgresUserStore{}
	connections := store.PostgresConnectionStore{}
	threads := store.PostgresThreadStore{}
	notes := store.PostgresNoteStore{}
	notifications := store.PostgresNotificationStore{}
	entries := store.MongoEntryStore{}
	audit := store.MongoAuditSink{}
	feed := services.RedisFeedPublisher{}

	entryStore = entries
	noteStore = notes
	connectionStore = connections

	dispatcher = &clinical.Dispatcher{Store: notifications, Feed: feed}
	auditor = &clinical.Auditor{Sink: audit}
	entryService = &clinical.EntryService{
		Entries:     entries,
		Connections: connections,
		Dispatcher:  dispatcher,
		Audit:       audit,
		Feed:        feed,
	}
	registry = &clinical.Registry{
		Users:       users,
		Connections: connections,
		Entries:     entries,
		Dispatcher:  dispatcher,
		Audit:       audit,
		Feed:        feed,
	}
	noteManager = &clinical.NoteManager{
		Users:       users,
		Connections: connections,
		Threads:     threads,
		Notes:       notes,
		Dispatcher:  dispatcher,
		Audit:       audit,
		Feed:        feed,
	}
}
