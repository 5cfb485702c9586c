package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 4096
	sendBufferSize = 64
)

// Client is one websocket connection bound to an authenticated profile.
type Client struct {
	ProfileID string

	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
	log       *zap.SugaredLogger
}

func NewClient(profileID string, conn *websocket.Conn, log *zap.SugaredLogger) *Client {
	return &Client{
		ProfileID: profileID,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		log:       log,
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// command is the only inbound frame shape clients may send. Joining a
// room is gated by the membership check the handler supplies.
type command struct {
	Action string `json:"action"` // "join" or "leave"
	ChatID string `json:"chat_id"`
}

type ack struct {
	Type   string `json:"type"`
	ChatID string `json:"chat_id"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// MembershipFunc reports whether the profile may join the chat room.
type MembershipFunc func(chatID, profileID string) bool

// ReadPump consumes join/leave commands until the connection drops, then
// unregisters the client. It blocks and is meant to run on the
// connection's own goroutine.
func (c *Client) ReadPump(hub *Hub, allowed MembershipFunc) {
	defer hub.Unregister(c)

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debugw("ws read error", "profile_id", c.ProfileID, "error", err)
			}
			return
		}
		var cmd command
		if err := json.Unmarshal(raw, &cmd); err != nil || cmd.ChatID == "" {
			c.enqueue(ack{Type: "error", OK: false, Error: "malformed command"})
			continue
		}
		switch cmd.Action {
		case "join":
			if !allowed(cmd.ChatID, c.ProfileID) {
				c.enqueue(ack{Type: "join", ChatID: cmd.ChatID, OK: false, Error: "chat not found or access denied"})
				continue
			}
			hub.Join(cmd.ChatID, c)
			c.enqueue(ack{Type: "join", ChatID: cmd.ChatID, OK: true})
		case "leave":
			hub.Leave(cmd.ChatID, c)
			c.enqueue(ack{Type: "leave", ChatID: cmd.ChatID, OK: true})
		default:
			c.enqueue(ack{Type: "error", ChatID: cmd.ChatID, OK: false, Error: "unknown action"})
		}
	}
}

// WritePump drains the send channel onto the socket and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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

func (c *Client) enqueue(frame interface{}) {
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}
