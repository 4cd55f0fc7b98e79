// internal/handler/websocket_types.go
package handler

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client stream types
const (
	ClientTypeReadings = "readings"
	ClientTypeEvents   = "events"
)

// Client represents a WebSocket client
type Client struct {
	ID          string          `json:"id"`
	Connection  *websocket.Conn `json:"-"`
	Send        chan []byte     `json:"-"`
	Type        string          `json:"type"` // readings, events
	UserAgent   string          `json:"user_agent"`
	RemoteAddr  string          `json:"remote_addr"`
	ConnectedAt time.Time       `json:"connected_at"`
}

// WebSocketMessage represents a WebSocket message
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// ConnectionManager manages WebSocket connections. A client's Send
// channel is closed only under the write lock, so senders holding the read
// lock never write to a closed channel.
type ConnectionManager struct {
	clients map[string]*Client
	closed  bool
	mutex   sync.RWMutex
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		clients: make(map[string]*Client),
	}
}

// Register registers a new client. It returns false after Close.
func (cm *ConnectionManager) Register(client *Client) bool {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	if cm.closed {
		close(client.Send)
		return false
	}
	cm.clients[client.ID] = client
	return true
}

// Unregister unregisters a client and closes its send channel
func (cm *ConnectionManager) Unregister(client *Client) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	if _, ok := cm.clients[client.ID]; ok {
		delete(cm.clients, client.ID)
		close(client.Send)
	}
}

// Close unregisters every client
func (cm *ConnectionManager) Close() {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	cm.closed = true
	for id, client := range cm.clients {
		delete(cm.clients, id)
		close(client.Send)
	}
}

// Send queues a message for one client. It returns false when the client
// is gone or its buffer is full.
func (cm *ConnectionManager) Send(client *Client, message []byte) bool {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	if _, ok := cm.clients[client.ID]; !ok {
		return false
	}
	select {
	case client.Send <- message:
		return true
	default:
		return false
	}
}

// Broadcast queues a message for every client of the given type and
// returns the number of clients that missed it.
func (cm *ConnectionManager) Broadcast(clientType string, message []byte) int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	dropped := 0
	for _, client := range cm.clients {
		if client.Type != clientType {
			continue
		}
		select {
		case client.Send <- message:
		default:
			dropped++
		}
	}
	return dropped
}

// GetStats returns connection statistics
func (cm *ConnectionManager) GetStats() *ConnectionStats {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	stats := &ConnectionStats{
		TotalConnections: len(cm.clients),
		ByType:           make(map[string]int),
		Clients:          make([]*Client, 0, len(cm.clients)),
	}

	for _, client := range cm.clients {
		stats.ByType[client.Type]++
		stats.Clients = append(stats.Clients, client)
	}

	return stats
}

// ConnectionStats represents connection statistics
type ConnectionStats struct {
	TotalConnections int            `json:"total_connections"`
	ByType           map[string]int `json:"by_type"`
	Clients          []*Client      `json:"clients"`
}
