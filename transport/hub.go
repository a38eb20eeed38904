package transport

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/shop-assistant/pipeline"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	ErrBufferFull       = errors.New("send buffer full")
	ErrConnectionClosed = errors.New("connection closed")
)

// Connection is one websocket client. Outbound frames go through the Send queue
// drained by the connection's write pump.
type Connection struct {
	ID         string
	RemoteAddr string
	UserAgent  string

	ws    *websocket.Conn
	send  chan []byte
	turns chan *pipeline.TurnRequest

	mu     sync.Mutex
	closed bool
}

// Send implements pipeline.Reporter for turns submitted on this connection.
func (c *Connection) Send(event *pipeline.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return c.enqueue(data)
}

func (c *Connection) enqueue(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

// shutdown closes both queues. The write pump then sends a close frame and the
// turn worker exits once queued turns are done.
func (c *Connection) shutdown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	c.closed = true
	close(c.send)
	close(c.turns)
	return true
}

func (c *Connection) submitTurn(req *pipeline.TurnRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}
	select {
	case c.turns <- req:
		return nil
	default:
		return ErrBufferFull
	}
}

func (c *Connection) write(messageType int, data []byte, timeout time.Duration) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, data)
}

// Hub tracks live connections and their room memberships.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	rooms       map[string]map[string]*Connection
	memberships map[string]map[string]struct{} // connection id -> rooms
}

func NewHub() *Hub {
	return &Hub{
		connections: map[string]*Connection{},
		rooms:       map[string]map[string]*Connection{},
		memberships: map[string]map[string]struct{}{},
	}
}

func (h *Hub) newConnection(ws *websocket.Conn, remoteAddr, userAgent string, sendBuffer, turnBuffer int) *Connection {
	return &Connection{
		ID:         uuid.NewString(),
		RemoteAddr: remoteAddr,
		UserAgent:  userAgent,
		ws:         ws,
		send:       make(chan []byte, sendBuffer),
		turns:      make(chan *pipeline.TurnRequest, turnBuffer),
	}
}

func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	h.connections[conn.ID] = conn
	h.memberships[conn.ID] = map[string]struct{}{}
	h.mu.Unlock()

	logger.Info("Connection registered", zap.String("connectionId", conn.ID), zap.String("remoteAddr", conn.RemoteAddr))
}

// Unregister removes the connection from every room and closes its queues.
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	if _, ok := h.connections[conn.ID]; !ok {
		h.mu.Unlock()
		return
	}
	for room := range h.memberships[conn.ID] {
		h.removeFromRoom(room, conn.ID)
	}
	delete(h.memberships, conn.ID)
	delete(h.connections, conn.ID)
	h.mu.Unlock()

	conn.shutdown()
	logger.Info("Connection unregistered", zap.String("connectionId", conn.ID))
}

func (h *Hub) Join(conn *Connection, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rooms, ok := h.memberships[conn.ID]
	if !ok {
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = map[string]*Connection{}
	}
	h.rooms[room][conn.ID] = conn
	rooms[room] = struct{}{}
}

func (h *Hub) Leave(conn *Connection, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if rooms, ok := h.memberships[conn.ID]; ok {
		delete(rooms, room)
	}
	h.removeFromRoom(room, conn.ID)
}

func (h *Hub) removeFromRoom(room, connID string) {
	members := h.rooms[room]
	if members == nil {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// BroadcastExcept sends the event to every member of the room other than sender.
// Members whose queue is full miss the event.
func (h *Hub) BroadcastExcept(room string, sender *Connection, event *pipeline.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, member := range h.rooms[room] {
		if sender != nil && id == sender.ID {
			continue
		}
		if err := member.enqueue(data); err != nil {
			logger.Error("Dropped room event", zap.String("connectionId", id), zap.String("room", room), zap.Error(err))
		}
	}
	return nil
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
