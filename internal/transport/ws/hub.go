package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgAnalysisCompleted MessageType = "analysis_completed"
	MsgPolicyUpdated     MessageType = "policy_updated"
	MsgError             MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages dashboard WebSocket connections, grouped per tenant. A
// tenant may have any number of dashboards open at once; every event
// for the tenant reaches all of them.
type Hub struct {
	// tenantID -> connID -> conn
	conns map[string]map[string]*Connection

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents one dashboard WebSocket connection
type Connection struct {
	ID       string
	TenantID string
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message for every dashboard of one tenant
type BroadcastMessage struct {
	TenantID string
	Message  *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.TenantID] == nil {
				h.conns[conn.TenantID] = make(map[string]*Connection)
			}
			h.conns[conn.TenantID][conn.ID] = conn
			h.mu.Unlock()
			log.Printf("[WS] Dashboard connected for tenant %s", conn.TenantID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if tenantConns, ok := h.conns[conn.TenantID]; ok {
				if existing, ok := tenantConns[conn.ID]; ok && existing == conn {
					delete(tenantConns, conn.ID)
					close(conn.Send)
					if len(tenantConns) == 0 {
						delete(h.conns, conn.TenantID)
					}
					log.Printf("[WS] Dashboard disconnected for tenant %s", conn.TenantID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for _, conn := range h.conns[msg.TenantID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToTenant sends a message to every dashboard of a tenant
// (implements service.Broadcaster)
func (h *Hub) BroadcastToTenant(tenantID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		TenantID: tenantID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}
