package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Mujanati13/Qabalan-sub006/config"
	"github.com/Mujanati13/Qabalan-sub006/internal/auth"
	"github.com/Mujanati13/Qabalan-sub006/internal/domain"
	"github.com/Mujanati13/Qabalan-sub006/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// writeWait bounds every outbound write so a wedged peer cannot block the
// pump indefinitely.
const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS authenticates and upgrades a live connection. The bearer token is
// checked before the upgrade: an absent or invalid credential terminates the
// attempt and the connection never registers.
func ServeWS(cfg *config.JWTConfig, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			logger.Warnf("[WS] connection from %s rejected: missing token", c.Request.RemoteAddr)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			logger.Warnf("[WS] connection from %s (origin %s) rejected: %v", c.Request.RemoteAddr, c.GetHeader("Origin"), err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Handshake failures are isolated per attempt; log enough to
			// diagnose origin misconfiguration.
			logger.Errorf("[WS] upgrade failed for %s (origin %s): %v", c.Request.RemoteAddr, c.GetHeader("Origin"), err)
			return
		}
		defer conn.Close()

		client := &Client{
			SessionID: uuid.NewString(),
			UserID:    claims.UserID,
			Role:      claims.Role,
			Send:      make(chan []byte, 256),
		}
		hub.Register(client)
		defer client.Close()

		// Confirmation goes to the new connection only.
		hub.SendTo(client, domain.EventConnectionConfirmed, map[string]interface{}{
			"message":   "connected",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		logger.Infof("[WS] user %d connected (session %s, role %s)", client.UserID, client.SessionID, client.Role)

		go writePump(client, conn)
		readPump(hub, client, conn)
		logger.Infof("[WS] user %d disconnected (session %s)", client.UserID, client.SessionID)
	}
}

// readPump consumes inbound events until the transport closes.
func readPump(hub *Hub, client *Client, conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			logger.Debugf("[WS] user %d sent malformed event: %v", client.UserID, err)
			continue
		}
		switch ev.Event {
		case domain.EventPing:
			hub.SendTo(client, domain.EventPong, nil)
		case domain.EventJoinAdminRoom:
			if hub.JoinAdminRoom(client) {
				hub.SendTo(client, domain.EventJoinedAdminRoom, nil)
			}
		case domain.EventUpdateOrderStatus:
			// Fan-out only; order state itself is mutated over REST.
			hub.BroadcastOrderStatus(ev.Data)
		default:
			logger.Debugf("[WS] user %d sent unknown event %q", client.UserID, ev.Event)
		}
	}
}

// writePump copies queued messages to the connection and keeps it alive
// with periodic pings.
func writePump(c *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
