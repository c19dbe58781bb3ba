// Package wshub keeps the websocket sessions of one room, keyed by player id.
package wshub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"
)

const (
	sendBuffer   = 32
	readLimit    = 4096
	writeTimeout = 5 * time.Second
)

// Inbound message types.
const (
	MsgStart      = "start"
	MsgCategory   = "category"
	MsgWord       = "word"
	MsgVote       = "vote"
	MsgReset      = "reset"
	MsgLeave      = "leave"
	MsgSetMode    = "set_mode"
	MsgAddWord    = "add_word"
	MsgRemoveWord = "remove_word"
)

// ClientMessage is the JSON structure received from clients.
type ClientMessage struct {
	Type          string `json:"type"`
	Value         string `json:"value,omitempty"`
	VotedPlayerID string `json:"votedPlayerId,omitempty"`
	Word          string `json:"word,omitempty"`
	Hint          string `json:"hint,omitempty"`
	EntryID       string `json:"entryId,omitempty"`
	Mode          string `json:"mode,omitempty"`
}

// ErrorMessage is sent only to the session whose action failed.
type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewError(code, message string) ErrorMessage {
	return ErrorMessage{Type: "error", Code: code, Message: message}
}

// Client represents a single WebSocket connection in the hub.
type Client struct {
	PlayerID string
	Conn     *websocket.Conn
	Send     chan []byte
}

func NewClient(playerID string, conn *websocket.Conn) *Client {
	return &Client{
		PlayerID: playerID,
		Conn:     conn,
		Send:     make(chan []byte, sendBuffer),
	}
}

// WritePump reads from the Send channel and writes to the WebSocket connection.
// It closes the connection once Send is closed.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				c.Conn.Close(websocket.StatusNormalClosure, "session closed")
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// ReadPump decodes client messages and hands them to handle until the
// connection fails or ctx ends. A normal close returns nil.
func (c *Client) ReadPump(ctx context.Context, handle func(ClientMessage)) error {
	c.Conn.SetReadLimit(readLimit)
	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, c.Conn, &msg); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		handle(msg)
	}
}

// Hub manages the WebSocket sessions of one room. Each player has at most one
// live session; registering a new one closes the previous.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     logrus.FieldLogger
}

func NewHub(log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		clients: make(map[string]*Client),
		log:     log,
	}
}

// Register adds c, replacing and closing any session the player already had.
func (h *Hub) Register(c *Client) (replaced bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.clients[c.PlayerID]; ok && old != c {
		close(old.Send)
		replaced = true
	}
	h.clients[c.PlayerID] = c
	return replaced
}

// Unregister removes c if it is still the player's current session and
// reports whether it was.
func (h *Hub) Unregister(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	cur, ok := h.clients[c.PlayerID]
	if !ok || cur != c {
		return false
	}
	close(c.Send)
	delete(h.clients, c.PlayerID)
	return true
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SendAll queues v for every session and returns how many accepted it.
// Non-blocking: drops if a channel is full.
func (h *Hub) SendAll(v any) int {
	data, ok := h.encode(v)
	if !ok {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, c := range h.clients {
		if trySend(c, data) {
			n++
		}
	}
	return n
}

// SendTo queues v for one player's session only.
func (h *Hub) SendTo(playerID string, v any) bool {
	data, ok := h.encode(v)
	if !ok {
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[playerID]
	if !ok {
		return false
	}
	return trySend(c, data)
}

// Reply queues v for the session c only. Sessions that were replaced get
// nothing.
func (h *Hub) Reply(c *Client, v any) bool {
	data, ok := h.encode(v)
	if !ok {
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.clients[c.PlayerID] != c {
		return false
	}
	return trySend(c, data)
}

// CloseAll ends every session.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.Send)
		delete(h.clients, id)
	}
}

func (h *Hub) encode(v any) ([]byte, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.WithError(err).Error("encode websocket message")
		return nil, false
	}
	return data, true
}

func trySend(c *Client, data []byte) bool {
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}
