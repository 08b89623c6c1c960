package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lorrc/chat-backend/internal/core/domain"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound events.
	send chan domain.Event

	// userID is the authenticated identity, empty for anonymous connections.
	userID string

	// presenceUser is the user this connection is counted for, set once by
	// the hub. Guarded by hub.mu.
	presenceUser string

	// rooms is the set of room keys this client has joined. Guarded by
	// hub.mu.
	rooms map[string]bool

	// closeOnce ensures the send channel is only closed once
	closeOnce sync.Once

	logger *slog.Logger
}

// NewClient creates a new WebSocket client. userID may be empty when the
// handshake carried no identity.
func NewClient(hub *Hub, conn *websocket.Conn, userID string, logger *slog.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan domain.Event, 256),
		userID: userID,
		rooms:  make(map[string]bool),
		logger: logger.With("user_id", userID),
	}
}

// closeSend safely closes the send channel exactly once
func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// ReadPump pumps messages from the websocket connection to the hub.
// This method runs in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			break
		}

		c.handleIncomingMessage(message)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
// This method runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline", "error", err)
				return
			}

			if !ok {
				// The hub closed the channel. Send close message.
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("failed to send close message", "error", err)
				}
				return
			}

			if err := c.writeJSON(event); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// writeJSON writes a JSON message to the websocket connection
func (c *Client) writeJSON(event domain.Event) error {
	w, err := c.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(w).Encode(event); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}

// --- Incoming Message Handling ---

// ClientMessage is the structure for messages sent from the client.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JoinChatPayload is the payload for join_chat messages.
type JoinChatPayload struct {
	ChatID string `json:"chatId"`
}

// JoinUserRoomPayload is the payload for join_user_room messages.
type JoinUserRoomPayload struct {
	UserID string `json:"userId"`
}

// RelayMessagePayload is the payload for send_message relays. It carries the
// already-persisted message as the frontend received it from the REST API.
type RelayMessagePayload struct {
	Message domain.MessageSnapshot `json:"message"`
}

// handleIncomingMessage processes messages received from the client
func (c *Client) handleIncomingMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Warn("failed to unmarshal client message", "error", err)
		return
	}

	switch msg.Type {
	case "join_chat":
		c.handleJoinChat(msg.Payload)

	case "join_user_room":
		c.handleJoinUserRoom(msg.Payload)

	case "send_message":
		c.handleRelayMessage(msg.Payload)

	case "PING":
		// Client-side keep-alive, respond with pong
		c.sendPong()

	default:
		c.logger.Debug("received unknown message type", "type", msg.Type)
	}
}

func (c *Client) handleJoinChat(payload json.RawMessage) {
	var p JoinChatPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.logger.Warn("failed to unmarshal join_chat payload", "error", err)
		return
	}

	if p.ChatID == "" {
		c.logger.Warn("join_chat request without chat ID")
		return
	}

	c.hub.JoinChat(c, p.ChatID)
}

func (c *Client) handleJoinUserRoom(payload json.RawMessage) {
	var p JoinUserRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.logger.Warn("failed to unmarshal join_user_room payload", "error", err)
		return
	}

	// An authenticated connection may only join its own user-room.
	userID := p.UserID
	if c.userID != "" {
		userID = c.userID
	}
	if userID == "" {
		c.logger.Warn("join_user_room request without user ID")
		return
	}

	c.hub.JoinUserRoom(c, userID)
}

// handleRelayMessage fans a client-relayed message out to its chat-room the
// same way the REST path does after persisting: the message itself plus an
// unread notification keyed by the sender.
func (c *Client) handleRelayMessage(payload json.RawMessage) {
	var p RelayMessagePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.logger.Warn("failed to unmarshal send_message payload", "error", err)
		return
	}

	if p.Message.ChatID == "" {
		c.logger.Warn("send_message relay without chat ID")
		return
	}

	c.hub.BroadcastToChat(p.Message.ChatID, domain.NewReceiveMessageEvent(p.Message))
	c.hub.BroadcastToChat(p.Message.ChatID, domain.NewNotificationEvent(p.Message.SenderID))
}

func (c *Client) sendPong() {
	c.hub.sendToClient(c, domain.NewPongEvent())
}
