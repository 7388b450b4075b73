package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 8192
	sendBuffer     = 64
)

// Client is one connected socket.
type Client struct {
	UserID string
	Role   string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	subs   map[string]Subscription
	closed bool
}

func newClient(h *Hub, conn *websocket.Conn, userID, role string) *Client {
	return &Client{
		UserID: userID,
		Role:   role,
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		subs:   make(map[string]Subscription),
	}
}

// Join subscribes the socket to topic. Joining twice is a no-op.
func (c *Client) Join(topic string) {
	c.mu.Lock()
	if c.closed || c.subs[topic] != nil {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	sub := c.hub.bus.Subscribe(topic, c.Send)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.subs[topic] != nil {
		sub.Unsubscribe()
		return
	}
	c.subs[topic] = sub
}

// Leave drops the socket's subscription to topic.
func (c *Client) Leave(topic string) {
	c.mu.Lock()
	sub := c.subs[topic]
	delete(c.subs, topic)
	c.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

// Joined reports whether the socket is subscribed to topic.
func (c *Client) Joined(topic string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subs[topic] != nil
}

// Send queues ev for writing. A full buffer drops the event rather than block the publisher.
func (c *Client) Send(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		c.hub.logger.Warn("Socket send buffer full, dropping event", zap.String("userID", c.UserID), zap.String("event", ev.Name))
	}
}

// SendEvent marshals data and sends it as event name.
func (c *Client) SendEvent(name string, data interface{}) {
	ev, err := NewEvent(name, data)
	if err != nil {
		return
	}
	c.Send(ev)
}

func (c *Client) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	subs := c.subs
	c.subs = make(map[string]Subscription)
	close(c.send)
	c.mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("Socket read error", zap.String("userID", c.UserID), zap.Error(err))
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(message, &ev); err != nil || ev.Name == "" {
			c.hub.logger.Debug("Ignoring malformed socket message", zap.String("userID", c.UserID))
			continue
		}
		c.hub.dispatch(c, ev)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
