// internal/socket/handler.go
package socket

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// TokenVerifier resolves a session token to its session id.
type TokenVerifier interface {
	SessionID(token string) (string, error)
}

// SessionChecker reports whether a session is still open.
type SessionChecker interface {
	Exists(ctx context.Context, sessionID string) (bool, error)
}

// Handler handles WebSocket connections
type Handler struct {
	Hub      *Hub
	Tokens   TokenVerifier
	Sessions SessionChecker
}

func NewHandler(hub *Hub, tokens TokenVerifier, sessions SessionChecker) *Handler {
	return &Handler{Hub: hub, Tokens: tokens, Sessions: sessions}
}

// HandleWebSocket upgrades the request and subscribes the connection to its
// session. Browsers cannot set headers on a WebSocket, so the token comes in
// the query string.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	if tokenString == "" {
		log.Println("[WebSocket] No token provided")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
		return
	}

	sessionID, err := h.Tokens.SessionID(tokenString)
	if err != nil {
		log.Printf("[WebSocket] Token rejected: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	// A token outlives an ended session until it expires
	exists, err := h.Sessions.Exists(c.Request.Context(), sessionID)
	if err != nil {
		log.Printf("[WebSocket] Session lookup failed: session=%s err=%v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if !exists {
		log.Printf("[WebSocket] Session ended: session=%s", sessionID)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session ended"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WebSocket] Upgrade error: %v", err)
		return
	}

	log.Printf("[WebSocket] ✅ Client connected: session=%s", sessionID)

	client := NewClient(h.Hub, sessionID, conn)
	h.Hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

func NewClient(hub *Hub, sessionID string, conn *websocket.Conn) *Client {
	return &Client{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Conn:      conn,
		Hub:       hub,
		Send:      make(chan []byte, 256),
		lastPing:  time.Now(),
	}
}
