// internal/socket/hub.go
package socket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Session messages
	MessageViewChanged   MessageType = "view_changed"
	MessageSessionClosed MessageType = "session_closed"

	// Dashboard messages
	MessageTaskUpdated          MessageType = "task_updated"
	MessageMemberRequestDecided MessageType = "member_request_decided"
	MessageDeadlineReminder     MessageType = "deadline_reminder"

	// Toasts
	MessageToast          MessageType = "toast"
	MessageToastDismissed MessageType = "toast_dismissed"

	// System messages
	MessagePing MessageType = "ping"
	MessagePong MessageType = "pong"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType            `json:"type"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Client is one connected browser tab. Several clients may share a session.
type Client struct {
	ID        string
	SessionID string
	Conn      *websocket.Conn
	Hub       *Hub
	Send      chan []byte
	lastPing  time.Time

	sendMu sync.Mutex
	closed bool
}

// Hub fans messages out to the clients of a session.
type Hub struct {
	sessionClients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	direct     chan *SessionMessage
	done       chan struct{}
	stopOnce   sync.Once

	mu sync.RWMutex
}

// SessionMessage is a message for every client of one session. Disconnect
// closes the session's connections once the message is queued.
type SessionMessage struct {
	SessionID  string
	Message    []byte
	Disconnect bool
}

func NewHub() *Hub {
	return &Hub{
		sessionClients: make(map[string]map[*Client]bool),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		direct:         make(chan *SessionMessage, 256),
		done:           make(chan struct{}),
	}
}

// Run starts the hub's main loop. It returns once Stop is called.
func (h *Hub) Run() {
	log.Println("[Hub] WebSocket hub started")

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case sm := <-h.direct:
			h.sendToSession(sm)

		case <-pingTicker.C:
			h.pingClients()

		case <-h.done:
			h.closeAll()
			log.Println("[Hub] WebSocket hub stopped")
			return
		}
	}
}

// Stop closes every client connection and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessionClients[client.SessionID] == nil {
		h.sessionClients[client.SessionID] = make(map[*Client]bool)
	}
	h.sessionClients[client.SessionID][client] = true

	log.Printf("[Hub] ✅ Client registered: session=%s, id=%s, session_clients=%d",
		client.SessionID, client.ID, len(h.sessionClients[client.SessionID]))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.sessionClients[client.SessionID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.sessionClients, client.SessionID)
	}
	client.closeSend()
	log.Printf("[Hub] ❌ Client disconnected: session=%s, id=%s", client.SessionID, client.ID)
}

func (h *Hub) sendToSession(sm *SessionMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.sessionClients[sm.SessionID] {
		if sm.Message != nil && !client.trySend(sm.Message) {
			go h.Unregister(client)
		}
		if sm.Disconnect {
			h.removeLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.sessionClients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

func (h *Hub) pingClients() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, _ := json.Marshal(Message{Type: MessagePing, Timestamp: time.Now()})
	for _, clients := range h.sessionClients {
		for client := range clients {
			if !client.trySend(data) {
				go h.Unregister(client)
			}
		}
	}
}

// ============================================
// Public Methods
// ============================================

// SendToSession queues a message for every client of a session. It never
// blocks: when the queue is full the message is dropped.
func (h *Hub) SendToSession(sessionID string, msgType MessageType, payload map[string]interface{}) {
	data, err := json.Marshal(Message{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	})
	if err != nil {
		log.Printf("[Hub] Error marshaling message: %v", err)
		return
	}

	select {
	case h.direct <- &SessionMessage{SessionID: sessionID, Message: data}:
	default:
		log.Printf("[Hub] ⚠️ Queue full, dropped %s for session %s", msgType, sessionID)
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.closeSend()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// CloseSession sends a final message and closes every connection of a session.
func (h *Hub) CloseSession(sessionID string, msgType MessageType) {
	data, _ := json.Marshal(Message{Type: msgType, Timestamp: time.Now()})
	select {
	case h.direct <- &SessionMessage{SessionID: sessionID, Message: data, Disconnect: true}:
	default:
		log.Printf("[Hub] ⚠️ Queue full, could not close session %s", sessionID)
	}
}

// IsSessionConnected reports whether a session has at least one client.
func (h *Hub) IsSessionConnected(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessionClients[sessionID]) > 0
}

// GetConnectedClientsCount returns total connected clients
func (h *Hub) GetConnectedClientsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.sessionClients {
		n += len(clients)
	}
	return n
}
