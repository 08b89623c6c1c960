package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/lorrc/chat-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/chat-backend/internal/adapters/primary/validation"
	"github.com/lorrc/chat-backend/internal/auth"
	"github.com/lorrc/chat-backend/internal/core/domain"
	"github.com/lorrc/chat-backend/internal/core/ports"
)

// ChatHandler handles HTTP requests for conversations
type ChatHandler struct {
	chatService  ports.ChatService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(
	chatService ports.ChatService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *ChatHandler {
	return &ChatHandler{
		chatService:  chatService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "chat"),
	}
}

// RegisterRoutes sets up the routing for all chat endpoints.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListChats)
	r.Post("/", h.HandleCreateOneToOne)
	r.Post("/group", h.HandleCreateGroupChat)
	r.Get("/{chatID}", h.HandleGetChat)
}

// --- Request/Response DTOs ---

// CreateChatRequest identifies the other participant of a direct chat.
type CreateChatRequest struct {
	UserID string `json:"userId"`
}

// Validate validates the create chat request
func (r *CreateChatRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("userId", r.UserID).UUID("userId", r.UserID)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// CreateGroupChatRequest defines the expected JSON body for group chats
type CreateGroupChatRequest struct {
	Name    string   `json:"name"`
	UserIDs []string `json:"userIds"`
}

// Validate validates the create group chat request
func (r *CreateGroupChatRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("name", r.Name)
	v.Custom("userIds", len(r.UserIDs) > 0, "At least one other member is required")
	for _, id := range r.UserIDs {
		v.UUID("userIds", id)
	}

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// ChatDTO defines the JSON response for chats.
type ChatDTO struct {
	ID              string   `json:"_id"`
	Name            string   `json:"name,omitempty"`
	Users           []string `json:"users"`
	LatestMessageID *string  `json:"latestMessage"`
	IsGroupChat     bool     `json:"isGroupChat"`
	CreatedAt       string   `json:"createdAt"`
}

func toChatDTO(chat *domain.Chat) ChatDTO {
	users := make([]string, 0, len(chat.MemberIDs))
	for _, id := range chat.MemberIDs {
		users = append(users, id.String())
	}

	var latestMessageID *string
	if chat.LatestMessageID != nil {
		value := chat.LatestMessageID.String()
		latestMessageID = &value
	}

	return ChatDTO{
		ID:              chat.ID.String(),
		Name:            chat.Name,
		Users:           users,
		LatestMessageID: latestMessageID,
		IsGroupChat:     chat.IsGroupChat,
		CreatedAt:       chat.CreatedAt.Format(time.RFC3339),
	}
}

func toChatDTOs(chats []*domain.Chat) []ChatDTO {
	response := make([]ChatDTO, 0, len(chats))
	for _, chat := range chats {
		response = append(response, toChatDTO(chat))
	}
	return response
}

// --- Handlers ---

// HandleListChats handles GET /chats
func (h *ChatHandler) HandleListChats(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	chats, err := h.chatService.ListChats(r.Context(), claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toChatDTOs(chats))
}

// HandleCreateOneToOne handles POST /chats. Opening a conversation with the
// same user twice returns the existing chat.
func (h *ChatHandler) HandleCreateOneToOne(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateChatRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	otherID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	chat, err := h.chatService.CreateOneToOne(r.Context(), claims.UserID, otherID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toChatDTO(chat))
}

// HandleCreateGroupChat handles POST /chats/group
func (h *ChatHandler) HandleCreateGroupChat(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateGroupChatRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	memberIDs, err := parseUUIDs(req.UserIDs)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	chat, err := h.chatService.CreateGroupChat(r.Context(), ports.CreateChatParams{
		Name:      req.Name,
		CreatorID: claims.UserID,
		MemberIDs: memberIDs,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("group chat created",
		"chat_id", chat.ID,
		"user_id", claims.UserID,
	)

	WriteCreated(w, toChatDTO(chat))
}

// HandleGetChat handles GET /chats/{chatID}
func (h *ChatHandler) HandleGetChat(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	chatID, err := parseUUIDParam(r, "chatID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	chat, err := h.chatService.GetChat(r.Context(), chatID, claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toChatDTO(chat))
}

// getClaims extracts and validates user claims from the request context
func (h *ChatHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
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

// --- Shared helpers ---

// parseUUIDParam extracts and validates a UUID URL parameter
func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	value := chi.URLParam(r, name)
	id, err := uuid.Parse(value)
	if err != nil {
		v := validation.NewValidator()
		v.Custom(name, false, "Must be a valid UUID")
		return uuid.Nil, v.Errors()
	}
	return id, nil
}

// parseUUIDs converts a list of string IDs, rejecting malformed entries
func parseUUIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, value := range values {
		id, err := uuid.Parse(value)
		if err != nil {
			v := validation.NewValidator()
			v.Custom("userIds", false, "Must be valid UUIDs")
			return nil, v.Errors()
		}
		ids = append(ids, id)
	}
	return ids, nil
}
