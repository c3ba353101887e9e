package services

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/aurelia-health/aurelia-backend/internal/database"
)

// FeedChannelPrefix is the Redis pub/sub channel prefix; one channel per
// recipient, so fan-out stays per-user even across instances.
const FeedChannelPrefix = "feed:user:"

// FeedEvent is the payload broadcast over Redis and delivered to dashboard
// WebSockets.
type FeedEvent struct {
	Type      string            `json:"type"`
	Data      map[string]string `json:"data,omitempty"`
	Timestamp time.Time         `json:"timestamp,omitempty"`
}

// FeedConn is the minimal interface our WebSocket implementation must satisfy.
type FeedConn interface {
	WriteJSON(v interface{}) error
	ReadJSON(dest interface{}) error
	Close() error
}

// lockedFeedConn serializes writes to the underlying socket.
// gorilla/websocket allows at most one concurrent writer, and hub delivery
// runs on its own goroutines while the handler writes pongs and primers.
type lockedFeedConn struct {
	writeMu sync.Mutex
	inner   FeedConn
}

// NewLockedFeedConn wraps conn so every WriteJSON holds a write lock.
// Handlers must register the wrapped connection and route their own writes
// through it too.
func NewLockedFeedConn(conn FeedConn) FeedConn {
	return &lockedFeedConn{inner: conn}
}

func (c *lockedFeedConn) WriteJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.inner.WriteJSON(v)
}

func (c *lockedFeedConn) ReadJSON(dest interface{}) error { return c.inner.ReadJSON(dest) }

func (c *lockedFeedConn) Close() error { return c.inner.Close() }

// feedHub is a per-instance registry of connected dashboards. A new
// connection for the same user replaces the old one.
type feedHub struct {
	mu          sync.RWMutex
	connections map[string]FeedConn
}

var (
	hub         = &feedHub{connections: make(map[string]FeedConn)}
	feedStarted sync.Once
)

// RegisterFeedConnection registers or replaces a user's dashboard connection.
func RegisterFeedConnection(userID string, conn FeedConn) {
	hub.mu.Lock()
	hub.connections[userID] = conn
	hub.mu.Unlock()
}

// UnregisterFeedConnection removes a user's connection. The connection is
// only dropped if it is still the registered one, so a reconnect racing a
// disconnect keeps the newer socket.
func UnregisterFeedConnection(userID string, conn FeedConn) {
	hub.mu.Lock()
	if hub.connections[userID] == conn {
		delete(hub.connections, userID)
	}
	hub.mu.Unlock()
}

// deliverFeedEvent pushes an event to the local connection for userID, if any.
func deliverFeedEvent(userID string, event FeedEvent) {
	hub.mu.RLock()
	conn, ok := hub.connections[userID]
	hub.mu.RUnlock()
	if !ok {
		return
	}

	// Non-blocking best-effort send.
	go func() {
		if err := conn.WriteJSON(event); err != nil {
			log.Printf("error writing feed event to websocket: %v", err)
		}
	}()
}

// RedisFeedPublisher pushes change events through Redis pub/sub. Publish
// failures are logged and never propagated: a dropped feed event must not
// fail the write that triggered it.
type RedisFeedPublisher struct{}

func (RedisFeedPublisher) Publish(ctx context.Context, recipientIDs []string, eventType string, payload map[string]string) {
	event := FeedEvent{
		Type:      eventType,
		Data:      payload,
		Timestamp: time.Now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal feed event: %v", err)
		return
	}

	for _, recipientID := range recipientIDs {
		if recipientID == "" {
			continue
		}
		channel := FeedChannelPrefix + recipientID
		if err := database.RedisClient.Publish(ctx, channel, data).Err(); err != nil {
			log.Printf("failed to publish feed event to %s: %v", channel, err)
		}
	}
}

// StartRedisFeedSubscriber ensures a single shared Redis listener per instance.
func StartRedisFeedSubscriber(ctx context.Context) {
	feedStarted.Do(func() {
		go runFeedSubscriber(ctx)
	})
}

func runFeedSubscriber(ctx context.Context) {
	client := database.RedisClient
	if client == nil {
		log.Println("Redis client not initialized; feed subscriber not started")
		return
	}

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := client.PSubscribe(ctx, FeedChannelPrefix+"*")
			defer pubsub.Close()

			log.Println("✅ Feed Redis subscriber started (pattern: " + FeedChannelPrefix + "*)")

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					log.Printf("Redis feed subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				userID := strings.TrimPrefix(msg.Channel, FeedChannelPrefix)
				var event FeedEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("failed to unmarshal feed event: %v", err)
					continue
				}

				deliverFeedEvent(userID, event)
			}
		}()
	}
}
