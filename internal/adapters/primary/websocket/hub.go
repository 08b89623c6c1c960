package websocket

import (
	"log/slog"
	"sync"

	"github.com/lorrc/chat-backend/internal/core/domain"
	"github.com/lorrc/chat-backend/internal/core/ports"
)

// Hub owns every live connection and the room membership that drives event
// fan-out. A room is nothing but the set of clients currently joined to a
// string key: user-rooms are keyed by user ID, chat-rooms by chat or group
// ID. An empty room is pruned immediately - rooms have no existence of their
// own.
type Hub struct {
	// clients is the registry of all live connections.
	clients map[*Client]bool

	// rooms maps room keys to joined clients.
	rooms map[string]map[*Client]bool

	// presence derives the online-user set from user-room membership.
	presence *PresenceTracker

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// mu protects clients, rooms and each client's room set.
	mu sync.RWMutex

	logger *slog.Logger
}

// Ensure Hub implements the realtime ports.
var (
	_ ports.RoomBroadcaster = (*Hub)(nil)
	_ ports.PresenceReader  = (*Hub)(nil)
)

// NewHub creates a new WebSocket hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		presence:   NewPresenceTracker(),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// Run consumes register/unregister requests. This MUST be run as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)
		}
	}
}

// registerClient adds a connection to the registry. An identified connection
// joins its own user-room right away and may flip its user online.
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true

	var online bool
	if client.userID != "" {
		h.joinRoomLocked(client, client.userID)
		online = h.countPresenceLocked(client, client.userID)
	}
	h.mu.Unlock()

	h.logger.Info("client registered",
		"user_id", client.userID,
		"total_connections", h.ClientCount(),
	)

	if online {
		h.broadcastPresenceChange(domain.NewUserOnlineEvent(client.userID))
	}
}

// unregisterClient removes a connection and all of its room memberships. If
// it was the last connection counted for its user, the user goes offline.
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if !h.clients[client] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)

	for roomKey := range client.rooms {
		h.leaveRoomLocked(client, roomKey)
	}

	var offline bool
	offlineUser := client.presenceUser
	if offlineUser != "" {
		offline = h.presence.Remove(offlineUser)
	}

	// Close under the same lock that removed the client from the registry
	// and its rooms. Broadcasts queue events while holding the read lock, so
	// a client they can still see is a client whose channel is still open.
	client.closeSend()
	h.mu.Unlock()

	h.logger.Info("client unregistered", "user_id", client.userID)

	if offline {
		h.broadcastPresenceChange(domain.NewUserOfflineEvent(offlineUser))
	}
}

// JoinChat joins the client to the chat-room keyed by chatID.
func (h *Hub) JoinChat(client *Client, chatID string) {
	if chatID == "" {
		return
	}
	h.mu.Lock()
	h.joinRoomLocked(client, chatID)
	h.mu.Unlock()

	h.logger.Debug("client joined chat room",
		"user_id", client.userID,
		"chat_id", chatID,
	)
}

// JoinUserRoom joins the client to a user-room and marks that user online.
// A connection is counted for at most one user; repeat joins are no-ops.
func (h *Hub) JoinUserRoom(client *Client, userID string) {
	if userID == "" {
		return
	}
	h.mu.Lock()
	h.joinRoomLocked(client, userID)
	online := h.countPresenceLocked(client, userID)
	h.mu.Unlock()

	if online {
		h.broadcastPresenceChange(domain.NewUserOnlineEvent(userID))
	}
}

// joinRoomLocked is idempotent: joining the same key twice leaves the client
// in the room's delivery set exactly once. Callers hold h.mu.
func (h *Hub) joinRoomLocked(client *Client, roomKey string) {
	if h.rooms[roomKey] == nil {
		h.rooms[roomKey] = make(map[*Client]bool)
	}
	h.rooms[roomKey][client] = true
	client.rooms[roomKey] = true
}

// leaveRoomLocked removes the client from a room and prunes the key once the
// room is empty. Callers hold h.mu.
func (h *Hub) leaveRoomLocked(client *Client, roomKey string) {
	if room, ok := h.rooms[roomKey]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, roomKey)
		}
	}
	delete(client.rooms, roomKey)
}

// countPresenceLocked counts the connection toward userID's presence unless
// it is already counted. Returns true on the offline-to-online transition.
// Callers hold h.mu.
func (h *Hub) countPresenceLocked(client *Client, userID string) bool {
	if client.presenceUser != "" {
		return false
	}
	client.presenceUser = userID
	return h.presence.Add(userID)
}

// broadcastPresenceChange sends the refreshed online set to everyone,
// followed by the individual transition event.
func (h *Hub) broadcastPresenceChange(transition domain.Event) {
	h.BroadcastAll(domain.NewOnlineUsersEvent(h.presence.Snapshot()))
	h.BroadcastAll(transition)
}

// BroadcastToChat delivers the event to every connection in the chat-room.
// An empty or unknown room is a silent no-op.
func (h *Hub) BroadcastToChat(chatID string, event domain.Event) {
	h.broadcastToRoom(chatID, event)
}

// BroadcastToUser delivers the event to every connection in the user-room.
func (h *Hub) BroadcastToUser(userID string, event domain.Event) {
	h.broadcastToRoom(userID, event)
}

// BroadcastToMembers delivers the event to each member's user-room, once per
// member ID.
func (h *Hub) BroadcastToMembers(memberIDs []string, event domain.Event) {
	for _, memberID := range memberIDs {
		h.broadcastToRoom(memberID, event)
	}
}

// BroadcastAll delivers the event to every live connection.
func (h *Hub) BroadcastAll(event domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		h.deliverLocked(client, event)
	}
}

// broadcastToRoom queues the event to each room member's send buffer.
// Fan-out to the buffers completes before this call returns; the network
// writes happen on each client's write pump.
func (h *Hub) broadcastToRoom(roomKey string, event domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[roomKey]
	if !ok {
		return
	}

	h.logger.Debug("broadcasting event",
		"event_type", event.Type,
		"room", roomKey,
		"client_count", len(room),
	)

	for client := range room {
		h.deliverLocked(client, event)
	}
}

// sendToClient queues an event for one client, skipping it silently when the
// client has already been unregistered.
func (h *Hub) sendToClient(client *Client, event domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.clients[client] {
		return
	}
	h.deliverLocked(client, event)
}

// deliverLocked queues the event to a single client. Callers hold h.mu,
// which excludes unregisterClient closing the send channel mid-send. A
// client whose send buffer is full is dropped and unregistered; delivery is
// best-effort and never surfaces an error to the caller. Both sends are
// non-blocking, so holding the lock here never stalls the hub.
func (h *Hub) deliverLocked(client *Client, event domain.Event) {
	select {
	case client.send <- event:
	default:
		h.logger.Warn("client send buffer full, unregistering",
			"user_id", client.userID,
		)
		select {
		case h.Unregister <- client:
		default:
		}
	}
}

// OnlineUsers returns the current presence snapshot.
func (h *Hub) OnlineUsers() []string {
	return h.presence.Snapshot()
}

// IsOnline reports whether the user has any live connection.
func (h *Hub) IsOnline(userID string) bool {
	return h.presence.IsOnline(userID)
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomCount returns the number of active rooms.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// ClientsInRoom returns the number of connections joined to a room key.
func (h *Hub) ClientsInRoom(roomKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.rooms[roomKey]; ok {
		return len(room)
	}
	return 0
}
