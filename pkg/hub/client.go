package hub

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	// writeWait is how long to wait for a write to complete
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong response
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the largest subscribe request accepted from a watcher
	maxMessageSize = 4 * 1024
)

// Client is one dashboard watcher
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan Message
	topic atomic.Pointer[string]

	// Closed when writePump returns
	written chan struct{}
}

// NewClient creates a watcher following topic ("" for every session) and
// registers it with the hub
func NewClient(hub *Hub, conn *websocket.Conn, topic string) *Client {
	client := &Client{
		hub:  hub,
		conn: conn,
		send:    make(chan Message, 256),
		written: make(chan struct{}),
	}
	client.topic.Store(&topic)
	select {
	case hub.register <- client:
	case <-hub.done:
		close(client.send)
	}
	return client
}

// Topic returns the session the client follows, or "" for all
func (c *Client) Topic() string {
	return *c.topic.Load()
}

func (c *Client) follows(topic string) bool {
	own := c.Topic()
	return own == "" || topic == "" || own == topic
}

// Run starts the client's read and write pumps
// This should be called in the websocket handler. It returns only after
// both pumps are done, since the handler's return hands conn back to fiber.
func (c *Client) Run() {
	go c.writePump()
	c.readPump() // Blocks until connection closes
	<-c.written
}

// readPump reads messages from the websocket connection
// It keeps the connection alive and detects disconnection
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		// {"session": "<id>"} switches topic; an empty id follows everything.
		var req subscribeRequest
		if err := json.Unmarshal(data, &req); err != nil {
			c.hub.logger.Debug("ignoring watcher message", "error", err)
			continue
		}
		c.topic.Store(&req.Session)
		c.hub.logger.Debug("watcher subscribed", "topic", req.Session)
	}
}

// writePump writes messages to the websocket connection
// Only this goroutine writes to the connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		close(c.written)
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel - send close frame
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message.Data); err != nil {
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
