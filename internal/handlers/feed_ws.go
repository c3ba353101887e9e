package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aurelia-health/aurelia-backend/internal/services"
)

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS for WebSocket is handled at the HTTP layer already.
		return true
	},
}

// feedClientMessage is what the dashboard may send upstream; only pings are
// meaningful, everything else is ignored.
type feedClientMessage struct {
	Type string `json:"type"`
}

// FeedWebSocket streams change events to a connected dashboard.
// Authentication is via the session token (Authorization: Bearer <token>,
// or ?token= for browser WebSocket clients). Events arrive through the
// Redis feed subscriber; each user has at most one live connection.
func FeedWebSocket(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing session token", http.StatusUnauthorized)
			return
		}
	}

	identity, ok, err := services.ValidateSession(token)
	if err != nil || !ok {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}

	conn, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// All writes go through the locked wrapper: hub delivery runs on its
	// own goroutines and would otherwise race the pong/primer writes here.
	feedConn := services.NewLockedFeedConn(conn)
	services.RegisterFeedConnection(identity.UserID, feedConn)
	defer services.UnregisterFeedConnection(identity.UserID, feedConn)

	// Prime the dashboard badge so it does not wait for the next event.
	if count, cerr := dispatcher.UnreadCount(r.Context(), identity.UserID); cerr == nil {
		_ = feedConn.WriteJSON(services.FeedEvent{
			Type:      "unread",
			Data:      map[string]string{"count": strconv.Itoa(count)},
			Timestamp: time.Now().UTC(),
		})
	}

	conn.SetReadLimit(4 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg feedClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		if msg.Type == "ping" {
			_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
			_ = feedConn.WriteJSON(services.FeedEvent{Type: "pong", Timestamp: time.Now().UTC()})
		}
	}
}
