package ports

import "github.com/lorrc/chat-backend/internal/core/domain"

// RoomBroadcaster is the port the notify path uses to fan domain events out
// to connected clients after a database write commits. Delivery is
// best-effort and fire-and-forget: an empty room or an already-disconnected
// client is a silent no-op, never an error, and a broadcast failure never
// rolls back the committed mutation.
type RoomBroadcaster interface {
	// BroadcastToChat delivers the event to every connection joined to the
	// chat-room keyed by chatID.
	BroadcastToChat(chatID string, event domain.Event)

	// BroadcastToUser delivers the event to every connection joined to the
	// user-room keyed by userID.
	BroadcastToUser(userID string, event domain.Event)

	// BroadcastToMembers performs BroadcastToUser once per member ID.
	BroadcastToMembers(memberIDs []string, event domain.Event)
}

// PresenceReader exposes the derived online-user set.
type PresenceReader interface {
	OnlineUsers() []string
	IsOnline(userID string) bool
}
