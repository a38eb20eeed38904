package session

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidSession = errors.New("invalid session id")

// ParseID validates a client supplied session token and returns its canonical form.
func ParseID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	// uuid.Parse also accepts urn: and braced forms; sessions are plain 36 char ids.
	if len(raw) != 36 {
		return "", ErrInvalidSession
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return "", ErrInvalidSession
	}
	return id.String(), nil
}

func NewID() string {
	return uuid.New().String()
}
