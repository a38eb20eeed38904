package transport

import (
	"encoding/json"
	"time"

	"github.com/SaiNageswarS/shop-assistant/pipeline"
)

// Inbound event names.
const (
	EventSendMessage = "sendMessage"
	EventJoinRoom    = "joinRoom"
	EventLeaveRoom   = "leaveRoom"
	EventTyping      = "typing"
	EventStopTyping  = "stopTyping"
	EventPing        = "ping"
)

// Outbound event names not produced by the pipeline.
const (
	EventUserTyping = "userTyping"
	EventPong       = "pong"
	EventRoomJoined = "roomJoined"
	EventRoomLeft   = "roomLeft"
)

// Envelope is the inbound frame. Data is decoded once the event name is known.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type SendMessagePayload struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type RoomPayload struct {
	RoomID string `json:"roomId"`
}

type TypingPayload struct {
	SessionID string `json:"sessionId"`
}

type UserTypingData struct {
	SessionID string `json:"sessionId"`
	IsTyping  bool   `json:"isTyping"`
}

type PongData struct {
	Timestamp time.Time `json:"timestamp"`
}

type RoomData struct {
	RoomID string `json:"roomId"`
}

func newPong() *pipeline.Event {
	return &pipeline.Event{Name: EventPong, Data: PongData{Timestamp: time.Now().UTC()}}
}

func newUserTyping(sessionID string, isTyping bool) *pipeline.Event {
	return &pipeline.Event{Name: EventUserTyping, Data: UserTypingData{SessionID: sessionID, IsTyping: isTyping}}
}

func newRoomEvent(name, roomID string) *pipeline.Event {
	return &pipeline.Event{Name: name, Data: RoomData{RoomID: roomID}}
}
