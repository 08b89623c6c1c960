package domain

import (
	"time"
)

// UserRef is a lightweight user reference embedded in wire payloads, the
// resolved form of a bare user ID.
type UserRef struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	ProfilePic string `json:"profilePic,omitempty"`
}

// NewUserRef builds a reference from a domain user.
func NewUserRef(user *User) UserRef {
	return UserRef{
		ID:         user.ID.String(),
		Name:       user.Name,
		ProfilePic: user.ProfilePic,
	}
}

// MessageSnapshot matches the API response shape for messages.
type MessageSnapshot struct {
	ID         string `json:"_id"`
	ChatID     string `json:"chatId"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName,omitempty"`
	Content    string `json:"content"`
	FileURL    string `json:"fileUrl,omitempty"`
	FileName   string `json:"fileName,omitempty"`
	Type       string `json:"type"`
	Delivered  bool   `json:"delivered"`
	CreatedAt  string `json:"createdAt"`
}

// NewMessageSnapshot builds a message snapshot from a domain message.
func NewMessageSnapshot(message *Message) MessageSnapshot {
	return MessageSnapshot{
		ID:         message.ID.String(),
		ChatID:     message.ChatID.String(),
		SenderID:   message.SenderID.String(),
		SenderName: message.SenderName,
		Content:    message.Content,
		FileURL:    message.FileURL,
		FileName:   message.FileName,
		Type:       string(message.Type),
		Delivered:  message.Delivered,
		CreatedAt:  message.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// GroupSnapshot matches the API response shape for groups, with admin and
// member references resolved to user documents.
type GroupSnapshot struct {
	ID            string    `json:"_id"`
	Name          string    `json:"name"`
	Admin         UserRef   `json:"admin"`
	Members       []UserRef `json:"members"`
	Admins        []UserRef `json:"admins"`
	ProfilePic    string    `json:"profilePic,omitempty"`
	LastMessageAt *string   `json:"lastMessageAt"`
	CreatedAt     string    `json:"createdAt"`
}

// MemberIDs returns the IDs of every current member, in snapshot order.
func (s *GroupSnapshot) MemberIDs() []string {
	ids := make([]string, 0, len(s.Members))
	for _, member := range s.Members {
		ids = append(ids, member.ID)
	}
	return ids
}
