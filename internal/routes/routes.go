package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/aurelia-health/aurelia-backend/internal/handlers"
)

func SetupRoutes(r *chi.Mux) {
	// Auth routes
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/signin", handlers.Signin)
	r.Post("/api/auth/signout", handlers.Signout)
	r.Get("/api/auth/me", handlers.Me)

	// Journal entry routes
	r.Post("/api/entries", handlers.CreateEntry)
	r.Get("/api/entries", handlers.GetEntries)
	r.Put("/api/entries/{id}", handlers.UpdateEntry)
	r.Delete("/api/entries/{id}", handlers.DeleteEntry)

	// Care connection routes
	r.Post("/api/connections", handlers.CreateConnection)
	r.Get("/api/connections", handlers.GetConnections)
	r.Delete("/api/connections/{professionalID}", handlers.RevokeConnection)

	// Clinical note and thread routes
	r.Post("/api/threads", handlers.CreateThread)
	r.Post("/api/notes", handlers.CreateNote)
	r.Get("/api/notes", handlers.GetNotes)
	r.Put("/api/notes/{id}/status", handlers.UpdateNoteStatus)

	// Notification routes
	r.Get("/api/notifications", handlers.GetNotifications)
	r.Get("/api/notifications/unread-count", handlers.GetUnreadCount)
	r.Put("/api/notifications/{id}/read", handlers.MarkNotificationRead)
	r.Put("/api/notifications/read-all", handlers.MarkAllNotificationsRead)

	// Offline report export (JSON or CSV)
	r.Get("/api/export", handlers.ExportReport)

	// File upload routes
	r.Post("/api/upload", handlers.UploadFile)

	// WebSocket endpoint for the live dashboard changefeed
	r.Get("/ws/feed", handlers.FeedWebSocket)
}
