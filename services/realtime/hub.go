package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// InboundHandler processes one client event. A returned error is logged and sent
// back to that client as an "error" event.
type InboundHandler func(ctx context.Context, c *Client, data json.RawMessage) error

// Hub tracks connected sockets and routes their inbound events by name.
type Hub struct {
	bus    Bus
	logger *zap.Logger

	mu       sync.RWMutex
	clients  map[*Client]struct{}
	handlers map[string]InboundHandler
}

func NewHub(bus Bus, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		bus:      bus,
		logger:   logger,
		clients:  make(map[*Client]struct{}),
		handlers: make(map[string]InboundHandler),
	}
}

// Bus returns the bus the hub subscribes clients on.
func (h *Hub) Bus() Bus { return h.bus }

// Handle registers fn for inbound events named event.
func (h *Hub) Handle(event string, fn InboundHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[event] = fn
}

// Serve takes ownership of conn for userID and blocks until the socket closes.
func (h *Hub) Serve(conn *websocket.Conn, userID, role string) {
	c := newClient(h, conn, userID, role)
	h.register(c)
	c.Join(UserTopic(userID))

	go c.writePump()
	c.readPump()
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("Socket connected", zap.String("userID", c.UserID), zap.Int("clients", n))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.close()
		h.logger.Debug("Socket disconnected", zap.String("userID", c.UserID))
	}
}

func (h *Hub) dispatch(c *Client, ev Event) {
	h.mu.RLock()
	fn, ok := h.handlers[ev.Name]
	h.mu.RUnlock()
	if !ok {
		h.logger.Debug("No handler for socket event", zap.String("event", ev.Name))
		return
	}
	if err := fn(context.Background(), c, ev.Data); err != nil {
		h.logger.Warn("Socket event failed", zap.String("event", ev.Name), zap.String("userID", c.UserID), zap.Error(err))
		c.SendEvent("error", map[string]string{"event": ev.Name, "message": err.Error()})
	}
}

// Connected is the number of open sockets.
func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	all := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		all = append(all, c)
	}
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	for _, c := range all {
		c.close()
		c.conn.Close()
	}
}
