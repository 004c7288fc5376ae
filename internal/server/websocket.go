package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/proximity/internal/core/observability/log"
)

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if err := s.authorize(r); err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", log.Error(err))
		return
	}
	s.conns.Add(1)
	defer s.conns.Done()

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, s.config.SendBuffer),
	}
	logger := s.logger.With(log.String("client_id", c.id))

	// hello is queued under the lock so it precedes every broadcast, and a
	// client that read it is registered.
	hello, _ := json.Marshal(Message{Type: TypeHello})
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.send <- hello
	s.clients[c] = struct{}{}
	total := len(s.clients)
	s.mu.Unlock()

	written := make(chan struct{})
	go s.writeLoop(c, logger, written)
	logger.Info("Client connected",
		log.String("remote_addr", conn.RemoteAddr().String()),
		log.Int("total_clients", total))

	s.readLoop(r.Context(), c, logger)

	s.mu.Lock()
	delete(s.clients, c)
	close(c.send)
	total = len(s.clients)
	s.mu.Unlock()

	<-written
	_ = conn.Close()
	logger.Info("Client disconnected", log.Int("total_clients", total))
}

// readLoop decodes commands until the connection fails. Replies go through
// the send queue so only writeLoop writes to the connection.
func (s *Server) readLoop(ctx context.Context, c *client, logger log.Log) {
	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("Read failed", log.Error(err))
			}
			return
		}

		var reply Message
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			reply = Message{Type: TypeError, Error: fmt.Errorf("%w: %w", ErrInvalidMessage, err).Error()}
		} else {
			cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
			reply = s.execute(cmdCtx, cmd)
			cancel()
			logger.Debug("Command handled", log.String("action", cmd.Action), log.String("result", reply.Type))
		}

		out, err := json.Marshal(reply)
		if err != nil {
			logger.Error("Encode reply failed", log.Error(err))
			continue
		}
		c.send <- out
	}
}

func (s *Server) writeLoop(c *client, logger log.Log, done chan<- struct{}) {
	defer close(done)
	broken := false
	for data := range c.send {
		if broken {
			continue
		}
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Debug("Write failed", log.Error(err))
			broken = true
			// Unblocks readLoop.
			_ = c.conn.Close()
		}
	}
}
