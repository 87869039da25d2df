package ws

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"caby/internal/general/contracts"
	"caby/internal/general/logger"
)

// Handler upgrades HTTP requests to WebSocket subscriber sessions.
type Handler struct {
	logger   *logger.Logger
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewHandler(logger *logger.Logger, hub *Hub, allowedOrigins []string) *Handler {
	return &Handler{
		logger: logger,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// originChecker admits configured browser origins and non-browser clients
// (which send no Origin header).
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if strings.EqualFold(origin, a) {
				return true
			}
		}
		return false
	}
}

// clientMessage is the envelope clients send: join_ride / leave_ride.
type clientMessage struct {
	Type   string `json:"type"`
	RideID string `json:"ride_id"`
}

// Connect handles GET /ws: upgrade, register with the hub, then read
// join/leave messages until the client disconnects.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error(ctx, "ws_upgrade_failed", "Failed to upgrade to WebSocket", err, nil)
		return
	}

	session := newSession(conn)
	h.hub.Attach(session)
	defer func() {
		h.hub.Detach(session)
		_ = conn.Close()
	}()

	h.logger.Info(ctx, "ws_connected", "Subscriber connected", map[string]any{"remote": conn.RemoteAddr().String()})

	// keepalive: ping every 30s, expect traffic (or pongs) within 60s
	conn.SetReadLimit(1 << 20) // 1 MiB
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	pingDone := make(chan struct{})
	defer close(pingDone)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-pingDone:
				return
			case <-ticker.C:
				if err := session.ping(); err != nil {
					_ = conn.Close() // unblocks the read loop
					return
				}
			}
		}
	}()

	for {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Info(ctx, "ws_closed_unexpectedly", "Subscriber connection dropped",
					map[string]any{"error": err.Error()})
			} else {
				h.logger.Info(ctx, "ws_closed", "Subscriber disconnected", nil)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			_ = session.SendJSON(map[string]any{"event": "error", "error": "bad json"})
			continue
		}

		switch msg.Type {
		case "join_ride":
			if strings.TrimSpace(msg.RideID) == "" {
				_ = session.SendJSON(map[string]any{"event": "error", "error": "ride_id is required"})
				continue
			}
			room := contracts.RideRoom(msg.RideID)
			h.hub.Join(session, room)
			h.logger.Info(ctx, "room_joined", "Subscriber joined ride room", map[string]any{"room": room})
			_ = session.SendJSON(map[string]any{"event": "joined", "room": room})

		case "leave_ride":
			room := contracts.RideRoom(msg.RideID)
			h.hub.Leave(session, room)
			_ = session.SendJSON(map[string]any{"event": "left", "room": room})

		default:
			_ = session.SendJSON(map[string]any{"event": "error", "error": "unknown message type"})
		}
	}
}
