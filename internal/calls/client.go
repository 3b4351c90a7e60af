package calls

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 32
)

// Client bridges one websocket connection to the registry. The connection
// subscribes to rooms with {"type":"subscribe","roomId":...} messages and
// relays everything else carrying a roomId into the registry.
type Client struct {
	registry *Registry
	conn     *websocket.Conn
	logger   *slog.Logger

	send chan Message

	mu   sync.Mutex
	subs map[string]*Subscription
}

// NewClient wraps an upgraded websocket connection.
func NewClient(registry *Registry, conn *websocket.Conn, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		registry: registry,
		conn:     conn,
		logger:   logger,
		send:     make(chan Message, sendBuffer),
		subs:     make(map[string]*Subscription),
	}
}

// Run services the connection until it closes. It blocks in the read pump;
// the write pump runs in its own goroutine. There is at most one reader and
// one writer per connection.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.unsubscribeAll()
		close(c.send)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var message Message
		if err := c.conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("signaling read failed", "error", err)
			}
			return
		}

		msgType, _ := message["type"].(string)
		switch msgType {
		case "subscribe":
			c.subscribe(message.RoomID())
		case "unsubscribe":
			c.unsubscribe(message.RoomID())
		default:
			c.registry.Relay(message)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) subscribe(roomID string) {
	if roomID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.subs[roomID]; ok {
		return
	}
	c.subs[roomID] = c.registry.Subscribe(roomID, c.send)
}

func (c *Client) unsubscribe(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sub, ok := c.subs[roomID]; ok {
		c.registry.Unsubscribe(sub)
		delete(c.subs, roomID)
	}
}

func (c *Client) unsubscribeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for roomID, sub := range c.subs {
		c.registry.Unsubscribe(sub)
		delete(c.subs, roomID)
	}
}
