// internal/handler/websocket_handler.go
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rfid-service/internal/model"
	"rfid-service/internal/utils"
)

const (
	pongWait     = 60 * time.Second
	pingPeriod   = 54 * time.Second
	writeWait    = 10 * time.Second
	clientBuffer = 256
)

// EventSource hands out reader event subscriptions
type EventSource interface {
	Subscribe(types ...model.EventType) (<-chan *model.ReaderEvent, func())
}

// WebSocketHandler streams readings and reader events to WebSocket clients
type WebSocketHandler struct {
	upgrader      websocket.Upgrader
	connections   *ConnectionManager
	readerService ReaderAPI
	events        EventSource
	logger        *utils.ServiceLogger
}

// NewWebSocketHandler creates a new WebSocket handler. allowedOrigins
// restricts browser origins; an empty list or "*" allows any.
func NewWebSocketHandler(
	readerService ReaderAPI,
	events EventSource,
	allowedOrigins []string,
	logger *zap.Logger,
) *WebSocketHandler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	return &WebSocketHandler{
		upgrader:      upgrader,
		connections:   NewConnectionManager(),
		readerService: readerService,
		events:        events,
		logger:        utils.NewServiceLogger(logger, "websocket-handler"),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// RegisterRoutes registers WebSocket routes
func (h *WebSocketHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/readings", h.HandleReadingsConnection)
	router.GET("/events", h.HandleEventConnection)
}

// Start forwards bus events to connected clients until ctx is done
func (h *WebSocketHandler) Start(ctx context.Context) {
	events, unsubscribe := h.events.Subscribe()
	defer unsubscribe()
	defer h.connections.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			h.BroadcastReaderEvent(event)
		}
	}
}

// HandleReadingsConnection streams tag reads
func (h *WebSocketHandler) HandleReadingsConnection(c *gin.Context) {
	h.serveClient(c, ClientTypeReadings)
}

// HandleEventConnection streams every reader event
func (h *WebSocketHandler) HandleEventConnection(c *gin.Context) {
	h.serveClient(c, ClientTypeEvents)
}

func (h *WebSocketHandler) serveClient(c *gin.Context, clientType string) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	client := &Client{
		ID:          uuid.New().String(),
		Connection:  conn,
		Send:        make(chan []byte, clientBuffer),
		Type:        clientType,
		UserAgent:   c.Request.UserAgent(),
		RemoteAddr:  c.Request.RemoteAddr,
		ConnectedAt: time.Now(),
	}

	if !h.connections.Register(client) {
		conn.Close()
		return
	}
	h.logger.Info("WebSocket client connected",
		zap.String("client_id", client.ID),
		zap.String("type", clientType),
		zap.String("remote_addr", client.RemoteAddr),
	)

	h.sendMessage(client, &WebSocketMessage{
		Type:      "initial_status",
		Data:      h.readerService.Status(),
		Timestamp: time.Now(),
	})

	go h.handleClientRead(client)
	go h.handleClientWrite(client)
}

// handleClientRead handles reading messages from WebSocket client
func (h *WebSocketHandler) handleClientRead(client *Client) {
	defer func() {
		h.connections.Unregister(client)
		client.Connection.Close()
		h.logger.Debug("WebSocket client disconnected", zap.String("client_id", client.ID))
	}()

	client.Connection.SetReadDeadline(time.Now().Add(pongWait))
	client.Connection.SetPongHandler(func(string) error {
		client.Connection.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, messageBytes, err := client.Connection.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket read error",
					zap.Error(err),
					zap.String("client_id", client.ID),
				)
			}
			break
		}

		var message WebSocketMessage
		if err := json.Unmarshal(messageBytes, &message); err != nil {
			h.sendError(client, "", "invalid message")
			continue
		}

		h.handleClientMessage(client, &message)
	}
}

// handleClientWrite handles writing messages to WebSocket client
func (h *WebSocketHandler) handleClientWrite(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Connection.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.Connection.WriteMessage(websocket.TextMessage, message); err != nil {
				h.logger.Error("WebSocket write error",
					zap.Error(err),
					zap.String("client_id", client.ID),
				)
				return
			}

		case <-ticker.C:
			client.Connection.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleClientMessage handles incoming client messages. Scans run inline
// so a client never has more than one in flight.
func (h *WebSocketHandler) handleClientMessage(client *Client, message *WebSocketMessage) {
	switch message.Type {
	case "ping":
		h.sendMessage(client, &WebSocketMessage{
			Type:      "pong",
			Timestamp: time.Now(),
			RequestID: message.RequestID,
		})

	case "status":
		h.sendMessage(client, &WebSocketMessage{
			Type:      "status",
			Data:      h.readerService.Status(),
			Timestamp: time.Now(),
			RequestID: message.RequestID,
		})

	case "scan":
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		reading, err := h.readerService.Scan(ctx)
		cancel()
		if err != nil {
			_, code := classifyError(err)
			h.sendError(client, message.RequestID, code)
			return
		}
		h.sendMessage(client, &WebSocketMessage{
			Type:      "scan_result",
			Data:      reading,
			Timestamp: time.Now(),
			RequestID: message.RequestID,
		})

	default:
		h.logger.Warn("Unknown message type",
			zap.String("type", message.Type),
			zap.String("client_id", client.ID),
		)
		h.sendError(client, message.RequestID, "unknown message type: "+message.Type)
	}
}

// sendMessage sends a message to a client
func (h *WebSocketHandler) sendMessage(client *Client, message *WebSocketMessage) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal WebSocket message", zap.Error(err))
		return
	}

	if !h.connections.Send(client, messageBytes) {
		h.logger.Warn("Client unavailable, dropping message",
			zap.String("client_id", client.ID),
		)
	}
}

// sendError sends an error message to a client
func (h *WebSocketHandler) sendError(client *Client, requestID, errorMsg string) {
	h.sendMessage(client, &WebSocketMessage{
		Type: "error",
		Data: map[string]interface{}{
			"error": errorMsg,
		},
		Timestamp: time.Now(),
		RequestID: requestID,
	})
}

// BroadcastReaderEvent sends an event to event clients, and tag reads to
// readings clients as well
func (h *WebSocketHandler) BroadcastReaderEvent(event *model.ReaderEvent) {
	h.broadcast(ClientTypeEvents, &WebSocketMessage{
		Type:      "reader_event",
		Data:      event,
		Timestamp: event.Timestamp,
	})

	if event.EventType == model.EventTagRead && event.Reading != nil {
		h.broadcast(ClientTypeReadings, &WebSocketMessage{
			Type:      "tag_read",
			Data:      event.Reading,
			Timestamp: event.Timestamp,
		})
	}
}

func (h *WebSocketHandler) broadcast(clientType string, message *WebSocketMessage) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal broadcast message", zap.Error(err))
		return
	}

	if dropped := h.connections.Broadcast(clientType, messageBytes); dropped > 0 {
		h.logger.Warn("Client send channel full during broadcast",
			zap.String("type", clientType),
			zap.Int("dropped", dropped),
		)
	}
}

// GetConnectionStats returns connection statistics
func (h *WebSocketHandler) GetConnectionStats() *ConnectionStats {
	return h.connections.GetStats()
}
