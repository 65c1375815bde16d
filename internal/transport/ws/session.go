package ws

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"

	"github.com/velmart/chat/internal/domain"
	"github.com/velmart/chat/internal/metrics"
	"github.com/velmart/chat/internal/service"
	"github.com/velmart/chat/pkg/action"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256
)

// Session is one live WebSocket connection bound to one authenticated user.
type Session struct {
	conn     *websocket.Conn
	userID   uuid.UUID
	registry *Registry
	chat     *service.ChatService

	send chan []byte
	done chan struct{}
}

func NewSession(conn *websocket.Conn, userID uuid.UUID, registry *Registry, chat *service.ChatService) *Session {
	return &Session{
		conn:     conn,
		userID:   userID,
		registry: registry,
		chat:     chat,
		send:     make(chan []byte, sendBufSize),
		done:     make(chan struct{}),
	}
}

// Push implements Pusher. It never blocks; a full buffer drops the frame.
func (s *Session) Push(data []byte) bool {
	select {
	case s.send <- data:
		return true
	default:
		return false
	}
}

// ReadPump reads inbound frames and drives the action pipeline. It owns
// session teardown: on any read failure the session is released from the
// registry and the connection closed, leaving other sessions untouched.
func (s *Session) ReadPump() {
	defer func() {
		s.registry.Release(s.userID, s)
		close(s.done)
		s.conn.Close(websocket.StatusNormalClosure, "")
		metrics.ConnectionsActive.Dec()
		log.Printf("ws: user %s disconnected (%d total)", s.userID, s.registry.Len())
	}()

	for {
		_, data, err := s.conn.Read(context.Background())
		if err != nil {
			if websocket.CloseStatus(err) == -1 {
				log.Printf("ws: read error from %s: %v", s.userID, err)
			}
			return
		}

		s.handleFrame(data)
	}
}

// WritePump writes outbound frames from the send buffer and keeps the
// connection alive with pings.
func (s *Session) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case data := <-s.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := s.conn.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				log.Printf("ws: write error to %s: %v", s.userID, err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := s.conn.Ping(ctx)
			cancel()
			if err != nil {
				log.Printf("ws: ping error to %s: %v", s.userID, err)
				return
			}

		case <-s.done:
			return
		}
	}
}

// handleFrame runs one inbound payload through validate → mutate → fan out.
// Failures are reported back on this session only; the connection stays open.
func (s *Session) handleFrame(data []byte) {
	act, err := action.Parse(data)
	if err != nil {
		var violations action.Violations
		if errors.As(err, &violations) {
			s.pushValidationError(violations)
		}
		metrics.ActionsTotal.WithLabelValues("invalid", "rejected").Inc()
		return
	}

	ctx := context.Background()

	var name string
	switch a := act.(type) {
	case action.Send:
		name = "send"
		_, err = s.chat.Send(ctx, s.userID, a.RecipientID, a.Content)
	case action.Edit:
		name = "edit"
		_, err = s.chat.Edit(ctx, s.userID, a.MessageID, a.Content)
	case action.Delete:
		name = "delete"
		_, err = s.chat.Delete(ctx, s.userID, a.MessageID)
	}

	if err != nil {
		s.reportError(name, err)
		metrics.ActionsTotal.WithLabelValues(name, "error").Inc()
		return
	}
	metrics.ActionsTotal.WithLabelValues(name, "ok").Inc()
}

func (s *Session) reportError(name string, err error) {
	switch {
	case errors.Is(err, domain.ErrRecipientNotFound), errors.Is(err, domain.ErrMessageNotFound):
		s.pushError("NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrNotSender):
		s.pushError("FORBIDDEN", err.Error())
	default:
		log.Printf("ws: %s from %s: %v", name, s.userID, err)
		s.pushError("INTERNAL", "Something went wrong")
	}
}
