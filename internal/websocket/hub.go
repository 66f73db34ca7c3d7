package websocket

import (
	"encoding/json"
	"sync"

	"pdf-chat-be/internal/entity"
	"pdf-chat-be/internal/pkg/logger"
)

// Hub pushes session status changes to every connected client.
type Hub struct {
	// Registered clients
	clients map[*Client]struct{}

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	stop     chan struct{}
	stopOnce sync.Once

	// Lock for safe map access
	mu sync.RWMutex

	// current is sent to each client as soon as it registers
	current func() entity.Status

	logger logger.ILogger
}

func NewHub(current func() entity.Status, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		current:    current,
		logger:     log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"client_id": client.ID})

			if h.current != nil {
				select {
				case client.Send <- encodeStatus(h.current()):
				default:
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case <-h.stop:
			h.mu.Lock()
			for client := range h.clients {
				h.remove(client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop closes every client and ends Run. Later registrations are refused.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// Register adds client, reporting false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.stop:
		return false
	}
}

// Unregister removes client. After Stop it returns at once; Run already
// closed every client.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

// remove must be called with mu held.
func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"client_id": client.ID})
}

func encodeStatus(status entity.Status) []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "status",
		"data": status,
	})
	return data
}

// BroadcastStatus sends status to all clients. Clients whose buffer is full
// are dropped.
func (h *Hub) BroadcastStatus(status entity.Status) {
	data := encodeStatus(status)

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"client_id": client.ID})
			h.remove(client)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
