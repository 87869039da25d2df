package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
)

// Session is one subscriber handle the hub delivers to. The concrete type
// wraps a WebSocket connection; tests substitute an in-memory recorder.
type Session interface {
	SendJSON(v any) error
	Close() error
}

// wsSession serializes writes to a gorilla connection, which does not allow
// concurrent writers.
type wsSession struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newSession(conn *websocket.Conn) *wsSession {
	return &wsSession{conn: conn}
}

func (s *wsSession) SendJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return s.conn.WriteJSON(v)
}

func (s *wsSession) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout))
}

func (s *wsSession) Close() error {
	return s.conn.Close()
}
