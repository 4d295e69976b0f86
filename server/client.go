package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/qt-konan/zeroiq-bot/bot"
)

// WebSocket timeout constants following Gorilla best practices
// See: https://github.com/gorilla/websocket/blob/master/examples/chat/client.go
const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024
)

// Frame is one inbound chat message on the wire.
type Frame struct {
	ID      string    `json:"id,omitempty"`
	Sender  string    `json:"sender,omitempty"`
	Text    string    `json:"text"`
	ReplyTo *ReplyRef `json:"reply_to,omitempty"`
}

// ReplyRef carries the replied-to message's literal text. This is the
// whole reply-linkage contract: the pending question is recovered from
// this text, not from any server-side session.
type ReplyRef struct {
	Sender string `json:"sender,omitempty"`
	Text   string `json:"text"`
}

// Response is one outbound chat message on the wire.
type Response struct {
	Text    string `json:"text"`
	ReplyTo string `json:"reply_to,omitempty"`
}

// Client is one WebSocket chat connection. Frames are dispatched to the
// engine serially in arrival order; responses go through the send channel
// so writes never interleave.
type Client struct {
	id        string
	conn      *websocket.Conn
	engine    *bot.Engine
	logger    *zap.SugaredLogger
	send      chan Response
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, engine *bot.Engine, logger *zap.SugaredLogger) *Client {
	return &Client{
		id:     "ws-" + uuid.NewString()[:8],
		conn:   conn,
		engine: engine,
		logger: logger,
		send:   make(chan Response, 16),
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

// readPump reads frames and runs them through the engine one at a time.
func (c *Client) readPump(ctx context.Context) {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}

		var frame Frame
		if err := json.Unmarshal(messageBytes, &frame); err != nil {
			if c.logger != nil {
				c.logger.Warnw("JSON unmarshal error",
					"error", err.Error(),
					"client_id", c.id,
				)
			}
			continue
		}

		if frame.ID == "" {
			frame.ID = uuid.NewString()
		}
		if frame.Sender == "" {
			frame.Sender = c.id
		}

		in := bot.Inbound{
			ID:     frame.ID,
			Sender: frame.Sender,
			Text:   frame.Text,
		}
		if frame.ReplyTo != nil {
			in.ReplyTo = &bot.Ref{
				Sender: frame.ReplyTo.Sender,
				Text:   frame.ReplyTo.Text,
			}
		}

		out := c.engine.Handle(ctx, in)
		c.send <- Response{Text: out.Text, ReplyTo: frame.ID}
	}
}

// handleReadError logs unexpected WebSocket read errors.
// Expected closure codes (going away, abnormal, no status) are silently ignored.
func (c *Client) handleReadError(err error) {
	if websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseNoStatusReceived,
	) {
		if c.logger != nil {
			c.logger.Warnw("WebSocket read error",
				"error", err.Error(),
				"client_id", c.id,
			)
		}
	}
}

// writePump writes queued responses and keeps the connection alive with
// periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case response, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(response); err != nil {
				if c.logger != nil {
					c.logger.Warnw("WebSocket write error",
						"error", err.Error(),
						"client_id", c.id,
					)
				}
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
