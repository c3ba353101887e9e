package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// Handle length bounds. Professionals often sign up as "dr-<name>", so the
// ceiling is a little roomier than a bare display name needs.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 24
)

// Handles start with a letter or digit and may contain underscores and
// hyphens after that. Connect-by-username relies on handles being exact,
// so anything fancier (spaces, unicode) is rejected outright.
var handleRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// ValidationError is a field-level input rejection, surfaced to the client
// as a 400 with its message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateUsername checks a signup or lookup handle before normalization.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)

	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return &ValidationError{
			Field:   "username",
			Message: fmt.Sprintf("Username must be %d-%d characters", MinUsernameLength, MaxUsernameLength),
		}
	}
	if !handleRegex.MatchString(username) {
		return &ValidationError{
			Field:   "username",
			Message: "Username must start with a letter or number and may contain letters, numbers, underscores and hyphens",
		}
	}
	return nil
}

// NormalizeUsername lowercases a handle for storage and lookup; connecting
// to "Dr-Ada" and "dr-ada" must reach the same account.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
