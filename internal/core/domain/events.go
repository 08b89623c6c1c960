package domain

import "time"

// EventType names a real-time event delivered over the WebSocket connection.
// The set is closed: every outbound event is built through one of the
// constructors below so the router and the notify path share a checked
// contract instead of loose maps.
type EventType string

const (
	// Presence
	EventOnlineUsers EventType = "onlineUsers"
	EventUserOnline  EventType = "userOnline"
	EventUserOffline EventType = "userOffline"

	// Messaging
	EventReceiveMessage  EventType = "receive_message"
	EventGetNotification EventType = "getNotification"

	// Group lifecycle
	EventGroupUpdated    EventType = "group_updated"
	EventReceiveNewGroup EventType = "receive_new_group"

	// Keep-alive reply to a client-side PING
	EventPong EventType = "PONG"
)

// Event is the payload sent over WebSocket.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// NewOnlineUsersEvent carries the full presence snapshot.
func NewOnlineUsersEvent(userIDs []string) Event {
	if userIDs == nil {
		userIDs = []string{}
	}
	return Event{Type: EventOnlineUsers, Payload: userIDs}
}

// NewUserOnlineEvent signals a user's first live connection.
func NewUserOnlineEvent(userID string) Event {
	return Event{Type: EventUserOnline, Payload: userID}
}

// NewUserOfflineEvent signals a user's last connection going away.
func NewUserOfflineEvent(userID string) Event {
	return Event{Type: EventUserOffline, Payload: userID}
}

// NewReceiveMessageEvent carries a message to a chat-room.
func NewReceiveMessageEvent(message MessageSnapshot) Event {
	return Event{Type: EventReceiveMessage, Payload: message}
}

// NotificationPayload is the lightweight unread signal sent alongside a
// message, and for friend-request activity.
type NotificationPayload struct {
	SenderID string    `json:"senderId"`
	IsRead   bool      `json:"isRead"`
	Date     time.Time `json:"date"`
}

// NewNotificationEvent builds an unread signal from a sender.
func NewNotificationEvent(senderID string) Event {
	return Event{Type: EventGetNotification, Payload: NotificationPayload{
		SenderID: senderID,
		IsRead:   false,
		Date:     time.Now().UTC(),
	}}
}

// NewGroupUpdatedEvent carries the full updated group document so member
// clients can reconcile their local view.
func NewGroupUpdatedEvent(group GroupSnapshot) Event {
	return Event{Type: EventGroupUpdated, Payload: group}
}

// NewGroupCreatedEvent is delivered to each initial member of a new group.
func NewGroupCreatedEvent(group GroupSnapshot) Event {
	return Event{Type: EventReceiveNewGroup, Payload: group}
}

// NewPongEvent answers an application-level PING.
func NewPongEvent() Event {
	return Event{Type: EventPong}
}
