package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/lorrc/chat-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/chat-backend/internal/adapters/primary/validation"
	"github.com/lorrc/chat-backend/internal/auth"
	"github.com/lorrc/chat-backend/internal/core/ports"
)

// UserHandler handles HTTP requests for the user directory and friendships
type UserHandler struct {
	userService  ports.UserService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	userService ports.UserService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		userService:  userService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "user"),
	}
}

// RegisterRoutes sets up the routing for all user endpoints.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListUsers)
	r.Get("/friends", h.HandleListFriends)
	r.Get("/friend-requests", h.HandleListFriendRequests)
	r.Post("/friend-requests", h.HandleSendFriendRequest)
	r.Patch("/friend-requests/accept", h.HandleAcceptFriendRequest)
	r.Patch("/profile", h.HandleUpdateProfile)
}

// --- Request DTOs ---

// FriendRequestBody identifies the other side of a friend request.
type FriendRequestBody struct {
	UserID string `json:"userId"`
}

// Validate validates the friend request body
func (r *FriendRequestBody) Validate() error {
	v := validation.NewValidator()

	v.Required("userId", r.UserID).UUID("userId", r.UserID)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// UpdateProfileRequest defines the expected JSON body for profile updates
type UpdateProfileRequest struct {
	Name       string `json:"name"`
	ProfilePic string `json:"profilePic"`
}

// --- Handlers ---

// HandleListUsers handles GET /users
func (h *UserHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	users, err := h.userService.ListUsers(r.Context(), claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toUserDTOs(users))
}

// HandleListFriends handles GET /users/friends
func (h *UserHandler) HandleListFriends(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	friends, err := h.userService.ListFriends(r.Context(), claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toUserDTOs(friends))
}

// HandleListFriendRequests handles GET /users/friend-requests
func (h *UserHandler) HandleListFriendRequests(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	senders, err := h.userService.ListFriendRequests(r.Context(), claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toUserDTOs(senders))
}

// HandleSendFriendRequest handles POST /users/friend-requests
func (h *UserHandler) HandleSendFriendRequest(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[FriendRequestBody](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	recipientID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.userService.SendFriendRequest(r.Context(), claims.UserID, recipientID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("friend request sent",
		"sender_id", claims.UserID,
		"recipient_id", recipientID,
	)

	WriteJSON(w, http.StatusOK, SuccessResponse{Message: "Friend request sent"})
}

// HandleAcceptFriendRequest handles PATCH /users/friend-requests/accept
func (h *UserHandler) HandleAcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[FriendRequestBody](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	senderID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.userService.AcceptFriendRequest(r.Context(), claims.UserID, senderID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("friend request accepted",
		"recipient_id", claims.UserID,
		"sender_id", senderID,
	)

	WriteJSON(w, http.StatusOK, SuccessResponse{Message: "Friend request accepted"})
}

// HandleUpdateProfile handles PATCH /users/profile
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[UpdateProfileRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), ports.UpdateProfileParams{
		UserID:     claims.UserID,
		ActorID:    claims.UserID,
		Name:       req.Name,
		ProfilePic: req.ProfilePic,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toUserDTO(user))
}

// getClaims extracts and validates user claims from the request context
func (h *UserHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
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
