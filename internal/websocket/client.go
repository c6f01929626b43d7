package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	outBufferSize = 16
	pingInterval  = 30 * time.Second
)

// Client is one connected planner screen: a browser tab or the mobile
// app mirroring the meal-plan grid. Sync flows strictly server to
// client; everything a client sends upstream goes through the HTTP API,
// so inbound frames are drained and dropped.
type Client struct {
	hub  *Hub
	conn *ws.Conn
	out  chan []byte
}

// NewClient creates a Client tied to the given hub and connection.
func NewClient(hub *Hub, conn *ws.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		out:  make(chan []byte, outBufferSize),
	}
}

// Run registers the client, starts the write loop, and blocks reading
// until the connection is closed, then unregisters.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writeLoop(ctx)

	// A read error means the screen is gone; cleanup follows.
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

// writeLoop drains the outgoing channel onto the connection and pings
// periodically so stale screens are detected and dropped.
func (c *Client) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.out:
			if !ok {
				// Hub closed the channel — connection is done
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
