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

// GroupHandler handles HTTP requests for group lifecycle operations
type GroupHandler struct {
	groupService ports.GroupService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(
	groupService ports.GroupService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "group"),
	}
}

// RegisterRoutes sets up the routing for all group endpoints.
func (h *GroupHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleCreateGroup)
	r.Get("/user-groups", h.HandleListUserGroups)

	r.Route("/{groupID}", func(r chi.Router) {
		r.Get("/", h.HandleGetGroup)
		r.Patch("/", h.HandleUpdateGroup)
		r.Patch("/add-members", h.HandleAddMembers)
		r.Patch("/remove-member", h.HandleRemoveMember)
		r.Patch("/toggle-admin", h.HandleToggleAdmin)
		r.Patch("/leave", h.HandleLeaveGroup)
	})
}

// --- Request DTOs ---

// CreateGroupRequest defines the expected JSON body for creating a group
type CreateGroupRequest struct {
	Name       string   `json:"name"`
	MemberIDs  []string `json:"members"`
	ProfilePic string   `json:"profilePic"`
}

// Validate validates the create group request
func (r *CreateGroupRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("name", r.Name).
		MaxLength("name", r.Name, domain.MaxGroupNameLength)
	v.Custom("members", len(r.MemberIDs) > 0, "At least one other member is required")
	for _, id := range r.MemberIDs {
		v.UUID("members", id)
	}

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// UpdateGroupRequest defines the expected JSON body for renaming a group or
// changing its avatar
type UpdateGroupRequest struct {
	Name       string `json:"name"`
	ProfilePic string `json:"profilePic"`
}

// GroupMembersRequest carries the member IDs for add-members requests.
type GroupMembersRequest struct {
	MemberIDs []string `json:"members"`
}

// Validate validates the group members request
func (r *GroupMembersRequest) Validate() error {
	v := validation.NewValidator()

	v.Custom("members", len(r.MemberIDs) > 0, "At least one member is required")
	for _, id := range r.MemberIDs {
		v.UUID("members", id)
	}

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// GroupMemberRequest identifies a single member for remove/toggle requests.
type GroupMemberRequest struct {
	MemberID string `json:"memberId"`
}

// Validate validates the group member request
func (r *GroupMemberRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("memberId", r.MemberID).UUID("memberId", r.MemberID)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// --- Handlers ---

// HandleCreateGroup handles POST /groups
func (h *GroupHandler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateGroupRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	memberIDs, err := parseUUIDs(req.MemberIDs)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	group, err := h.groupService.CreateGroup(r.Context(), ports.CreateGroupParams{
		Name:       req.Name,
		CreatorID:  claims.UserID,
		MemberIDs:  memberIDs,
		ProfilePic: req.ProfilePic,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("group created",
		"group_id", group.ID,
		"user_id", claims.UserID,
	)

	WriteCreated(w, group)
}

// HandleListUserGroups handles GET /groups/user-groups
func (h *GroupHandler) HandleListUserGroups(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	groups, err := h.groupService.ListUserGroups(r.Context(), claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, groups)
}

// HandleGetGroup handles GET /groups/{groupID}
func (h *GroupHandler) HandleGetGroup(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.getClaims(w, r); !ok {
		return
	}

	groupID, err := parseUUIDParam(r, "groupID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	group, err := h.groupService.GetGroup(r.Context(), groupID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, group)
}

// HandleUpdateGroup handles PATCH /groups/{groupID}
func (h *GroupHandler) HandleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	groupID, err := parseUUIDParam(r, "groupID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateGroupRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	group, err := h.groupService.UpdateGroup(r.Context(), ports.UpdateGroupParams{
		GroupID:    groupID,
		ActorID:    claims.UserID,
		Name:       req.Name,
		ProfilePic: req.ProfilePic,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("group updated",
		"group_id", groupID,
		"user_id", claims.UserID,
	)

	WriteJSON(w, http.StatusOK, group)
}

// HandleAddMembers handles PATCH /groups/{groupID}/add-members
func (h *GroupHandler) HandleAddMembers(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	groupID, err := parseUUIDParam(r, "groupID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[GroupMembersRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	memberIDs, err := parseUUIDs(req.MemberIDs)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	group, err := h.groupService.AddMembers(r.Context(), groupID, claims.UserID, memberIDs)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("group members added",
		"group_id", groupID,
		"count", len(memberIDs),
		"user_id", claims.UserID,
	)

	WriteJSON(w, http.StatusOK, group)
}

// HandleRemoveMember handles PATCH /groups/{groupID}/remove-member
func (h *GroupHandler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	groupID, err := parseUUIDParam(r, "groupID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	memberID, err := h.parseMemberBody(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	group, err := h.groupService.RemoveMember(r.Context(), groupID, claims.UserID, memberID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("group member removed",
		"group_id", groupID,
		"member_id", memberID,
		"user_id", claims.UserID,
	)

	WriteJSON(w, http.StatusOK, group)
}

// HandleToggleAdmin handles PATCH /groups/{groupID}/toggle-admin
func (h *GroupHandler) HandleToggleAdmin(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	groupID, err := parseUUIDParam(r, "groupID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	memberID, err := h.parseMemberBody(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	group, err := h.groupService.ToggleAdmin(r.Context(), groupID, claims.UserID, memberID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("group admin toggled",
		"group_id", groupID,
		"member_id", memberID,
		"user_id", claims.UserID,
	)

	WriteJSON(w, http.StatusOK, group)
}

// HandleLeaveGroup handles PATCH /groups/{groupID}/leave
func (h *GroupHandler) HandleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	groupID, err := parseUUIDParam(r, "groupID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	group, err := h.groupService.LeaveGroup(r.Context(), groupID, claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("group member left",
		"group_id", groupID,
		"user_id", claims.UserID,
	)

	WriteJSON(w, http.StatusOK, group)
}

// --- Helper methods ---

func (h *GroupHandler) parseMemberBody(r *http.Request) (uuid.UUID, error) {
	req, err := validation.DecodeAndValidate[GroupMemberRequest](r)
	if err != nil {
		return uuid.Nil, err
	}

	if err := req.Validate(); err != nil {
		return uuid.Nil, err
	}

	return uuid.Parse(req.MemberID)
}

// getClaims extracts and validates user claims from the request context
func (h *GroupHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
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
