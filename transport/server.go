package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/shop-assistant/pipeline"
	"github.com/SaiNageswarS/shop-assistant/session"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Config struct {
	PingInterval   time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxMessageSize int64
	SendBuffer     int
	// TurnQueue bounds how many sendMessage turns may wait behind the one in progress.
	TurnQueue int
}

func DefaultConfig() Config {
	return Config{
		PingInterval:   25 * time.Second,
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxMessageSize: 16 * 1024,
		SendBuffer:     64,
		TurnQueue:      8,
	}
}

// TurnHandler processes one sendMessage turn, reporting events back to the sender.
type TurnHandler interface {
	HandleTurn(ctx context.Context, reporter pipeline.Reporter, req *pipeline.TurnRequest) (*pipeline.TurnResult, error)
}

type Server struct {
	ctx      context.Context
	cfg      Config
	hub      *Hub
	handler  TurnHandler
	upgrader websocket.Upgrader
}

// NewServer builds the websocket endpoint. Turns run under ctx, not the connection,
// so a client that disconnects mid-turn does not abort the turn.
func NewServer(ctx context.Context, cfg Config, hub *Hub, handler TurnHandler) *Server {
	defaults := DefaultConfig()
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaults.PingInterval
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaults.ReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaults.MaxMessageSize
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaults.SendBuffer
	}
	if cfg.TurnQueue <= 0 {
		cfg.TurnQueue = defaults.TurnQueue
	}

	return &Server{
		ctx:     ctx,
		cfg:     cfg,
		hub:     hub,
		handler: handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET(WebSocketPath, s.HandleWebSocket)
}

func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("Failed to upgrade websocket", zap.Error(err))
		return err
	}

	conn := s.hub.newConnection(ws, c.RealIP(), c.Request().UserAgent(), s.cfg.SendBuffer, s.cfg.TurnQueue)
	s.hub.Register(conn)

	ws.SetReadLimit(s.cfg.MaxMessageSize)

	go s.writePump(conn)
	go s.turnWorker(conn)
	go s.readPump(conn)

	return nil
}

func (s *Server) readPump(conn *Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.ws.Close()
	}()

	conn.ws.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.ws.SetPongHandler(func(string) error {
		return conn.ws.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	})

	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Error("Websocket read failed", zap.String("connectionId", conn.ID), zap.Error(err))
			}
			return
		}
		conn.ws.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))

		s.handleMessage(conn, data)
	}
}

func (s *Server) writePump(conn *Connection) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.ws.Close()
	}()

	for {
		select {
		case data, ok := <-conn.send:
			if !ok {
				conn.write(websocket.CloseMessage, []byte{}, s.cfg.WriteTimeout)
				return
			}
			if err := conn.write(websocket.TextMessage, data, s.cfg.WriteTimeout); err != nil {
				logger.Error("Websocket write failed", zap.String("connectionId", conn.ID), zap.Error(err))
				return
			}

		case <-ticker.C:
			if err := conn.write(websocket.PingMessage, nil, s.cfg.WriteTimeout); err != nil {
				return
			}
		}
	}
}

// turnWorker runs the connection's turns one at a time, in receipt order.
func (s *Server) turnWorker(conn *Connection) {
	for req := range conn.turns {
		if _, err := s.handler.HandleTurn(s.ctx, conn, req); err != nil {
			logger.Info("Turn ended with error", zap.String("connectionId", conn.ID), zap.Error(err))
		}
	}
}

func (s *Server) handleMessage(conn *Connection, data []byte) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil || envelope.Event == "" {
		s.sendError(conn, pipeline.ErrTypeValidation, "invalid message envelope")
		return
	}

	switch envelope.Event {
	case EventSendMessage:
		s.handleSendMessage(conn, envelope.Data)
	case EventJoinRoom:
		s.handleRoom(conn, envelope.Data, true)
	case EventLeaveRoom:
		s.handleRoom(conn, envelope.Data, false)
	case EventTyping:
		s.handleTyping(conn, envelope.Data, true)
	case EventStopTyping:
		s.handleTyping(conn, envelope.Data, false)
	case EventPing:
		conn.Send(newPong())
	default:
		s.sendError(conn, pipeline.ErrTypeValidation, "unknown event: "+envelope.Event)
	}
}

func (s *Server) handleSendMessage(conn *Connection, data json.RawMessage) {
	var payload SendMessagePayload
	if err := decodePayload(data, &payload); err != nil {
		s.sendError(conn, pipeline.ErrTypeValidation, "invalid sendMessage payload")
		return
	}

	// Validation proper happens in the pipeline; a well-formed id also puts the
	// sender in its session room so typing indicators reach it.
	if sessionID, err := session.ParseID(payload.SessionID); err == nil {
		s.hub.Join(conn, sessionID)
	}

	err := conn.submitTurn(&pipeline.TurnRequest{
		SessionID: payload.SessionID,
		Message:   payload.Message,
		IPAddress: conn.RemoteAddr,
		UserAgent: conn.UserAgent,
	})
	if err != nil {
		logger.Error("Rejected turn", zap.String("connectionId", conn.ID), zap.Error(err))
		s.sendError(conn, pipeline.ErrTypeProcessing, "too many messages in progress")
	}
}

func (s *Server) handleRoom(conn *Connection, data json.RawMessage, join bool) {
	var payload RoomPayload
	if err := decodePayload(data, &payload); err != nil || payload.RoomID == "" {
		s.sendError(conn, pipeline.ErrTypeValidation, "roomId is required")
		return
	}

	if join {
		s.hub.Join(conn, payload.RoomID)
		conn.Send(newRoomEvent(EventRoomJoined, payload.RoomID))
		return
	}
	s.hub.Leave(conn, payload.RoomID)
	conn.Send(newRoomEvent(EventRoomLeft, payload.RoomID))
}

func (s *Server) handleTyping(conn *Connection, data json.RawMessage, typing bool) {
	var payload TypingPayload
	if err := decodePayload(data, &payload); err != nil {
		s.sendError(conn, pipeline.ErrTypeValidation, "invalid typing payload")
		return
	}
	sessionID, err := session.ParseID(payload.SessionID)
	if err != nil {
		s.sendError(conn, pipeline.ErrTypeInvalidSession, "sessionId must be a valid UUID")
		return
	}

	s.hub.BroadcastExcept(sessionID, conn, newUserTyping(sessionID, typing))
}

func (s *Server) sendError(conn *Connection, errorType, message string) {
	if err := conn.Send(pipeline.NewErrorEvent(errorType, message)); err != nil {
		logger.Error("Failed to send error event", zap.String("connectionId", conn.ID), zap.Error(err))
	}
}

func decodePayload(data json.RawMessage, v any) error {
	if len(data) == 0 {
		data = []byte("{}")
	}
	return json.Unmarshal(data, v)
}
