package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"macrocli/internal/infrastructure"
	"macrocli/pkg/contracts/events"
)

// Hub maintains the set of active clients and broadcasts collection events
// to them. Events are serialized once and fanned out to every client's send
// buffer; clients that cannot keep up are evicted.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Serialized events awaiting fan-out
	broadcast chan []byte

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// Logger instance
	logger *slog.Logger

	// Counters
	totalConnections int64
	eventsSent       int64
	eventsDropped    int64
	evictedClients   int64

	// Control
	quit    chan struct{}
	running bool
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = logger.With(slog.String("component", "ws.hub"))

	return &Hub{
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger,
		quit:       make(chan struct{}),
	}
}

// Start starts the hub's main loop on its own goroutine
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.totalConnections++
			h.mu.Unlock()

			ctx := context.Background()
			if client.traceID != "" {
				ctx = infrastructure.WithTraceID(ctx, client.traceID)
			}

			h.logger.InfoContext(ctx, "client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			// Tell the new client it is connected
			welcome := events.Envelope{
				ID:        uuid.New().String(),
				Type:      events.MessageTypeConnect,
				Timestamp: time.Now().UTC(),
				TraceID:   client.traceID,
				Data: map[string]interface{}{
					"status":    "connected",
					"client_id": client.id,
				},
			}

			if data, err := json.Marshal(welcome); err == nil {
				select {
				case client.send <- data:
				default:
					h.logger.WarnContext(ctx, "could not queue welcome message, client buffer full",
						slog.String("client_id", client.id))
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				count := len(h.clients)
				h.mu.Unlock()

				ctx := context.Background()
				if client.traceID != "" {
					ctx = infrastructure.WithTraceID(ctx, client.traceID)
				}

				h.logger.InfoContext(ctx, "client unregistered",
					slog.Int("total_clients", count),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			var sent int64
			for _, client := range clients {
				select {
				case client.send <- message:
					sent++
				default:
					// Client cannot keep up, drop it
					h.mu.Lock()
					close(client.send)
					delete(h.clients, client)
					h.evictedClients++
					h.mu.Unlock()

					h.logger.Warn("client send buffer full, disconnecting",
						slog.String("client_id", client.id))
				}
			}

			if sent > 0 {
				h.mu.Lock()
				h.eventsSent += sent
				h.mu.Unlock()
			}
		}
	}
}

// Broadcast publishes a typed event to all connected clients
func (h *Hub) Broadcast(msgType events.MessageType, data interface{}) {
	h.BroadcastWithTrace(msgType, data, "")
}

// BroadcastWithTrace publishes a typed event carrying a trace ID
func (h *Hub) BroadcastWithTrace(msgType events.MessageType, data interface{}, traceID string) {
	envelope := events.Envelope{
		ID:        uuid.New().String(),
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		TraceID:   traceID,
		Data:      data,
	}

	jsonData, err := json.Marshal(envelope)
	if err != nil {
		h.logger.Error("error marshaling event",
			slog.String("error", err.Error()),
			slog.String("event_type", string(msgType)))
		return
	}

	select {
	case h.broadcast <- jsonData:
	default:
		h.mu.Lock()
		h.eventsDropped++
		h.mu.Unlock()
		h.logger.Warn("broadcast queue full, dropping event",
			slog.String("event_type", string(msgType)))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns current hub counters
func (h *Hub) Stats() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":    len(h.clients),
		"total_connections": h.totalConnections,
		"events_sent":       h.eventsSent,
		"events_dropped":    h.eventsDropped,
		"evicted_clients":   h.evictedClients,
	}
}

// Stop gracefully stops the hub
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)

	// Close all client connections
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}
