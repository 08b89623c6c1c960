package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/lorrc/chat-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/chat-backend/internal/adapters/primary/validation"
	"github.com/lorrc/chat-backend/internal/auth"
	"github.com/lorrc/chat-backend/internal/core/domain"
	"github.com/lorrc/chat-backend/internal/core/ports"
)

// MessageHandler handles HTTP requests for messages
type MessageHandler struct {
	messageService ports.MessageService
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(
	messageService ports.MessageService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "message"),
	}
}

// RegisterRoutes sets up the routing for all message endpoints.
func (h *MessageHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleSendMessage)
	r.Get("/{chatID}", h.HandleListMessages)
}

// --- Request DTOs ---

// SendMessageRequest defines the expected JSON body for sending a message
type SendMessageRequest struct {
	ChatID      string `json:"chatId"`
	Content     string `json:"content"`
	FileURL     string `json:"fileUrl"`
	FileName    string `json:"fileName"`
	Type        string `json:"type"`
	IsGroupChat bool   `json:"isGroupChat"`
}

// Validate validates the send message request
func (r *SendMessageRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("chatId", r.ChatID).UUID("chatId", r.ChatID)
	v.Custom("content", r.Content != "" || r.FileURL != "", "Either content or a file is required")
	v.MaxLength("content", r.Content, domain.MaxMessageLength)
	v.OneOf("type", r.Type, []string{"text", "file"})

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// --- Handlers ---

// HandleSendMessage handles POST /messages
func (h *MessageHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[SendMessageRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	chatID, err := uuid.Parse(req.ChatID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	message, err := h.messageService.SendMessage(r.Context(), ports.SendMessageParams{
		ChatID:      chatID,
		SenderID:    claims.UserID,
		Content:     req.Content,
		FileURL:     req.FileURL,
		FileName:    req.FileName,
		Type:        domain.MessageType(req.Type),
		IsGroupChat: req.IsGroupChat,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("message sent",
		"message_id", message.ID,
		"chat_id", chatID,
		"user_id", claims.UserID,
	)

	WriteCreated(w, domain.NewMessageSnapshot(message))
}

// maxMessagePageSize caps how much history a single request can pull.
const maxMessagePageSize = 100

// HandleListMessages handles GET /messages/{chatID}. History is paged with
// limit/offset query parameters, oldest first.
func (h *MessageHandler) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	chatID, err := parseUUIDParam(r, "chatID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	page := validation.ParsePagination(r, maxMessagePageSize)

	messages, total, err := h.messageService.ListMessages(r.Context(), chatID, claims.UserID, page.Limit, page.Offset)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	snapshots := make([]domain.MessageSnapshot, 0, len(messages))
	for _, message := range messages {
		snapshots = append(snapshots, domain.NewMessageSnapshot(message))
	}

	WritePaginated(w, snapshots, page.Limit, page.Offset, total)
}

// getClaims extracts and validates user claims from the request context
func (h *MessageHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: "Not authorized",
			Code:  "UNAUTHORIZED",
		})
		return nil, false
	}
	return claims, true
}
