package realtime

import (
	"encoding/json"
	"log/slog"
	"time"

	"storm/internal/config"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is one WebSocket connection
type Client struct {
	id      string
	userID  string // "" when auth is disabled
	hub     *Hub
	conn    *websocket.Conn
	mail    *mailbox
	surface *Surface
	logger  *slog.Logger
}

// ReadPump applies incoming content_change frames to the surface until the
// connection closes
func (c *Client) ReadPump() {
	defer func() {
		c.hub.detach(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(config.MaxDocumentBodyBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read failed", "client_id", c.id, "error", err)
			}
			return
		}

		var msg Envelope
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug("ignoring malformed frame", "client_id", c.id, "error", err)
			continue
		}

		switch msg.Type {
		case EventContentChange:
			var payload ContentChangePayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				c.logger.Debug("ignoring malformed content_change", "client_id", c.id, "error", err)
				continue
			}
			c.surface.UpdateBuffer(payload.Value)
		default:
			c.logger.Debug("ignoring unknown frame", "client_id", c.id, "type", msg.Type)
		}
	}
}

// WritePump writes pending frames and keeps the connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.mail.ready:
			frames, closed := c.mail.take()
			if closed {
				// Hub removed the client
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			for _, data := range frames {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
					return
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
