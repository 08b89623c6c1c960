package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/chat-backend/internal/core/errors"
)

const MaxMessageLength = 4096

// MessageType distinguishes plain text messages from file attachments.
type MessageType string

const (
	MessageTypeText MessageType = "text"
	MessageTypeFile MessageType = "file"
)

// Message is one entry in a chat's history. ChatID refers to either a chat or
// a group; the two share an ID space on the wire.
type Message struct {
	ID         uuid.UUID
	ChatID     uuid.UUID
	SenderID   uuid.UUID
	SenderName string
	Content    string
	FileURL    string
	FileName   string
	Type       MessageType
	Delivered  bool
	CreatedAt  time.Time
}

// MessageParams holds parameters for creating a message.
type MessageParams struct {
	ChatID     uuid.UUID
	SenderID   uuid.UUID
	SenderName string
	Content    string
	FileURL    string
	FileName   string
	Type       MessageType
}

// NewMessage creates a message with validated parameters.
func NewMessage(params MessageParams) (*Message, error) {
	if params.ChatID == uuid.Nil {
		return nil, apperrors.ErrChatIDRequired
	}
	if params.SenderID == uuid.Nil {
		return nil, apperrors.ErrSenderIDRequired
	}
	if params.Content == "" && params.FileURL == "" {
		return nil, apperrors.ErrMessageContentRequired
	}
	if len(params.Content) > MaxMessageLength {
		return nil, apperrors.ErrMessageContentTooLong
	}

	msgType := params.Type
	if msgType == "" {
		msgType = MessageTypeText
	}

	return &Message{
		ID:         uuid.New(),
		ChatID:     params.ChatID,
		SenderID:   params.SenderID,
		SenderName: params.SenderName,
		Content:    params.Content,
		FileURL:    params.FileURL,
		FileName:   params.FileName,
		Type:       msgType,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
