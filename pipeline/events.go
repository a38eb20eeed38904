package pipeline

import (
	"time"

	"github.com/SaiNageswarS/shop-assistant/db"
)

// Outbound event names.
const (
	EventMessageProcessing = "messageProcessing"
	EventAIResponse        = "aiResponse"
	EventError             = "error"
)

const (
	ProcessingStarted   = "started"
	ProcessingCompleted = "completed"
)

// Event is one outbound message on the client channel.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// Reporter delivers events to the client that sent the turn.
type Reporter interface {
	Send(event *Event) error
}

// NoOpReporter drops every event.
type NoOpReporter struct{}

func (r *NoOpReporter) Send(event *Event) error {
	return nil
}

type MessageProcessingData struct {
	SessionID      string `json:"sessionId"`
	Status         string `json:"status"`
	ProcessingTime int64  `json:"processingTime,omitempty"` // milliseconds
}

type ResponseMetadata struct {
	ResponseType      string          `json:"responseType"`
	Model             string          `json:"model,omitempty"`
	ProcessingTimeMs  int64           `json:"processingTimeMs"`
	RetrievalTier     string          `json:"retrievalTier,omitempty"`
	RetrievedProducts []db.ProductRef `json:"retrievedProducts,omitempty"`
	ComplaintID       string          `json:"complaintId,omitempty"`
	ComplaintStatus   string          `json:"complaintStatus,omitempty"`
	IsComplete        *bool           `json:"isComplete,omitempty"`
	Fallback          bool            `json:"fallback,omitempty"`
}

type AIResponseData struct {
	SessionID string            `json:"sessionId"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  *ResponseMetadata `json:"metadata,omitempty"`
}

type ErrorData struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func NewProcessingStarted(sessionID string) *Event {
	return &Event{Name: EventMessageProcessing, Data: MessageProcessingData{SessionID: sessionID, Status: ProcessingStarted}}
}

func NewProcessingCompleted(sessionID string, elapsed time.Duration) *Event {
	return &Event{Name: EventMessageProcessing, Data: MessageProcessingData{
		SessionID:      sessionID,
		Status:         ProcessingCompleted,
		ProcessingTime: elapsed.Milliseconds(),
	}}
}

func NewAIResponse(sessionID, message string, metadata *ResponseMetadata) *Event {
	return &Event{Name: EventAIResponse, Data: AIResponseData{
		SessionID: sessionID,
		Message:   message,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}}
}

func NewErrorEvent(errorType, message string) *Event {
	return &Event{Name: EventError, Data: ErrorData{
		Type:      errorType,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}}
}
