package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/SaiNageswarS/shop-assistant/session"
)

const DefaultMaxMessageLength = 1000

// TurnRequest is one inbound sendMessage.
type TurnRequest struct {
	SessionID string
	Message   string
	IPAddress string
	UserAgent string
}

// validateTurn returns the canonical session id and trimmed message.
func validateTurn(req *TurnRequest, maxLength int) (string, string, *ValidationError) {
	if req == nil {
		return "", "", &ValidationError{Type: ErrTypeValidation, Message: "missing payload"}
	}

	sessionID, err := session.ParseID(req.SessionID)
	if err != nil {
		return "", "", &ValidationError{Type: ErrTypeInvalidSession, Message: "sessionId must be a valid UUID"}
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return "", "", &ValidationError{Type: ErrTypeEmptyMessage, Message: "message must not be empty"}
	}
	if !utf8.ValidString(message) {
		return "", "", &ValidationError{Type: ErrTypeValidation, Message: "message must be valid UTF-8"}
	}
	if utf8.RuneCountInString(message) > maxLength {
		return "", "", &ValidationError{
			Type:    ErrTypeMessageTooLong,
			Message: fmt.Sprintf("message must be at most %d characters", maxLength),
		}
	}

	return sessionID, message, nil
}
