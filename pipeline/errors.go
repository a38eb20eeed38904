package pipeline

import (
	"errors"
	"fmt"
)

// Error types carried by outbound error events.
const (
	ErrTypeValidation     = "VALIDATION_ERROR"
	ErrTypeInvalidSession = "INVALID_SESSION"
	ErrTypeEmptyMessage   = "EMPTY_MESSAGE"
	ErrTypeMessageTooLong = "MESSAGE_TOO_LONG"
	ErrTypeProcessing     = "PROCESSING_ERROR"
	ErrTypeGeneration     = "GENERATION_ERROR"
)

// ValidationError rejects a turn before any pipeline phase runs.
type ValidationError struct {
	Type    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

var ErrEmptyReply = errors.New("pipeline produced an empty reply")

const productionErrorMessage = "Đã có lỗi xảy ra khi xử lý tin nhắn. Vui lòng thử lại."
