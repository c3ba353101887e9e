package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aurelia-health/aurelia-backend/internal/database"
	"github.com/aurelia-health/aurelia-backend/internal/models"
)

const (
	// SessionDuration is 7 days
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for user->session mapping
	UserSessionKeyPrefix = "user_session:"
)

// SessionIdentity is what a valid session resolves to. Role and specialty
// are captured at login so request handling never re-reads the users table
// just to know who is asking.
type SessionIdentity struct {
	UserID    string           `json:"user_id"`
	Username  string           `json:"username"`
	Role      models.Role      `json:"role"`
	Specialty models.Specialty `json:"specialty,omitempty"`
}

// Viewer converts the session identity into the shape the engine filters on.
func (s SessionIdentity) Viewer() models.Viewer {
	return models.Viewer{ID: s.UserID, Role: s.Role, Specialty: s.Specialty}
}

// CreateSession creates a new session for a user and stores it in Redis.
// Any existing session for the user is invalidated first so the 7-day
// timer resets from the current login. Returns the session token.
func CreateSession(user models.User) (string, error) {
	InvalidateUserSessions(user.ID)

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	sessionToken := base64.URLEncoding.EncodeToString(tokenBytes)

	identity := SessionIdentity{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		Specialty: user.Specialty,
	}
	payload, err := json.Marshal(identity)
	if err != nil {
		return "", err
	}

	ctx := context.Background()
	sessionKey := SessionKeyPrefix + sessionToken
	userSessionKey := UserSessionKeyPrefix + user.ID

	if err := database.RedisClient.Set(ctx, sessionKey, payload, SessionDuration).Err(); err != nil {
		return "", err
	}
	if err := database.RedisClient.Set(ctx, userSessionKey, sessionToken, SessionDuration).Err(); err != nil {
		return "", err
	}

	return sessionToken, nil
}

// ValidateSession checks if a session token is valid and returns the
// identity stored at login.
func ValidateSession(sessionToken string) (SessionIdentity, bool, error) {
	if sessionToken == "" {
		return SessionIdentity{}, false, nil
	}

	ctx := context.Background()
	sessionKey := SessionKeyPrefix + sessionToken

	payload, err := database.RedisClient.Get(ctx, sessionKey).Result()
	if err != nil {
		return SessionIdentity{}, false, nil
	}

	var identity SessionIdentity
	if err := json.Unmarshal([]byte(payload), &identity); err != nil {
		return SessionIdentity{}, false, err
	}
	if _, err := uuid.Parse(identity.UserID); err != nil {
		return SessionIdentity{}, false, err
	}

	return identity, true, nil
}

// RefreshSession extends the session expiration by 7 days from now.
func RefreshSession(sessionToken string) error {
	if sessionToken == "" {
		return fmt.Errorf("session token is empty")
	}

	ctx := context.Background()
	sessionKey := SessionKeyPrefix + sessionToken

	payload, err := database.RedisClient.Get(ctx, sessionKey).Result()
	if err != nil {
		return err
	}

	var identity SessionIdentity
	if err := json.Unmarshal([]byte(payload), &identity); err != nil {
		return err
	}

	userSessionKey := UserSessionKeyPrefix + identity.UserID

	if err := database.RedisClient.Expire(ctx, sessionKey, SessionDuration).Err(); err != nil {
		return err
	}
	return database.RedisClient.Expire(ctx, userSessionKey, SessionDuration).Err()
}

// InvalidateSession removes a session from Redis.
func InvalidateSession(sessionToken string) error {
	if sessionToken == "" {
		return nil
	}

	ctx := context.Background()
	sessionKey := SessionKeyPrefix + sessionToken

	payload, err := database.RedisClient.Get(ctx, sessionKey).Result()
	if err == nil && payload != "" {
		var identity SessionIdentity
		if err := json.Unmarshal([]byte(payload), &identity); err == nil && identity.UserID != "" {
			database.RedisClient.Del(ctx, UserSessionKeyPrefix+identity.UserID)
		}
	}

	return database.RedisClient.Del(ctx, sessionKey).Err()
}

// InvalidateUserSessions invalidates the active session for a user (useful
// when the password changes or a new login replaces an old device).
func InvalidateUserSessions(userID string) error {
	ctx := context.Background()
	userSessionKey := UserSessionKeyPrefix + userID

	sessionToken, err := database.RedisClient.Get(ctx, userSessionKey).Result()
	if err == nil && sessionToken != "" {
		database.RedisClient.Del(ctx, SessionKeyPrefix+sessionToken)
	}

	return database.RedisClient.Del(ctx, userSessionKey).Err()
}
