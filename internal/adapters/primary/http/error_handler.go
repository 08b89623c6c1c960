package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	mw "github.com/lorrc/chat-backend/internal/adapters/primary/http/middleware"
	apperrors "github.com/lorrc/chat-backend/internal/core/errors"
)

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	return mw.GetRequestID(ctx)
}

// ErrorResponse is the standard JSON error response format
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ValidationErrorResponse includes field-level validation errors
type ValidationErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler with the given logger
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle processes an error and writes the appropriate HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	requestID := GetRequestID(r.Context())

	// Check for AppError first (our custom error type)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		h.logError(r, appErr.StatusCode, appErr.Err, requestID)
		h.writeErrorResponse(w, appErr.StatusCode, ErrorResponse{
			Error:   appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		})
		return
	}

	// Check for ValidationErrors
	var validationErrs *apperrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		h.logError(r, http.StatusUnprocessableEntity, err, requestID)
		h.writeValidationErrorResponse(w, validationErrs)
		return
	}

	// Map known domain errors to HTTP responses
	statusCode, response := h.mapDomainError(err)
	h.logError(r, statusCode, err, requestID)
	h.writeErrorResponse(w, statusCode, response)
}

// mapDomainError converts domain errors to HTTP status codes and responses
func (h *ErrorHandler) mapDomainError(err error) (int, ErrorResponse) {
	switch {
	// Authentication & Authorization
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrorResponse{
			Error: "Invalid credentials",
			Code:  "INVALID_CREDENTIALS",
		}
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorResponse{
			Error: "Authentication required",
			Code:  "UNAUTHORIZED",
		}
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{
			Error: "You do not have permission to perform this action",
			Code:  "FORBIDDEN",
		}

	// Not Found errors
	case errors.Is(err, apperrors.ErrUserNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error: "User not found",
			Code:  "USER_NOT_FOUND",
		}
	case errors.Is(err, apperrors.ErrChatNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error: "Chat not found",
			Code:  "CHAT_NOT_FOUND",
		}
	case errors.Is(err, apperrors.ErrGroupNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error: "Group not found",
			Code:  "GROUP_NOT_FOUND",
		}
	case errors.Is(err, apperrors.ErrFriendRequestNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error: "Friend request not found",
			Code:  "FRIEND_REQUEST_NOT_FOUND",
		}

	// Conflict errors
	case errors.Is(err, apperrors.ErrUserExists):
		return http.StatusConflict, ErrorResponse{
			Error: "A user with this email already exists",
			Code:  "USER_EXISTS",
		}
	case errors.Is(err, apperrors.ErrFriendRequestExists):
		return http.StatusConflict, ErrorResponse{
			Error: "A friend request between these users is already pending",
			Code:  "FRIEND_REQUEST_EXISTS",
		}
	case errors.Is(err, apperrors.ErrAlreadyFriends):
		return http.StatusConflict, ErrorResponse{
			Error: "These users are already friends",
			Code:  "ALREADY_FRIENDS",
		}

	// Membership & authorization rules
	case errors.Is(err, apperrors.ErrNotChatMember):
		return http.StatusForbidden, ErrorResponse{
			Error: "You are not a member of this chat",
			Code:  "NOT_CHAT_MEMBER",
		}
	case errors.Is(err, apperrors.ErrNotGroupMember):
		return http.StatusBadRequest, ErrorResponse{
			Error: "The user is not a member of this group",
			Code:  "NOT_GROUP_MEMBER",
		}
	case errors.Is(err, apperrors.ErrNotGroupAdmin):
		return http.StatusForbidden, ErrorResponse{
			Error: "Only group admins can perform this action",
			Code:  "NOT_GROUP_ADMIN",
		}
	case errors.Is(err, apperrors.ErrNotGroupCreator):
		return http.StatusForbidden, ErrorResponse{
			Error: "Only the group creator can perform this action",
			Code:  "NOT_GROUP_CREATOR",
		}
	case errors.Is(err, apperrors.ErrCannotRemoveOwner):
		return http.StatusBadRequest, ErrorResponse{
			Error: "The group creator cannot be removed or demoted",
			Code:  "CANNOT_REMOVE_OWNER",
		}

	// Validation errors
	case errors.Is(err, apperrors.ErrEmailRequired),
		errors.Is(err, apperrors.ErrEmailInvalid),
		errors.Is(err, apperrors.ErrPasswordTooWeak),
		errors.Is(err, apperrors.ErrPasswordRequired),
		errors.Is(err, apperrors.ErrNameRequired),
		errors.Is(err, apperrors.ErrNameTooLong),
		errors.Is(err, apperrors.ErrGroupNameRequired),
		errors.Is(err, apperrors.ErrMembersRequired),
		errors.Is(err, apperrors.ErrChatMembersNeeded),
		errors.Is(err, apperrors.ErrSelfFriendRequest),
		errors.Is(err, apperrors.ErrMessageContentRequired),
		errors.Is(err, apperrors.ErrMessageContentTooLong),
		errors.Is(err, apperrors.ErrChatIDRequired),
		errors.Is(err, apperrors.ErrSenderIDRequired):
		return http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		}

	// Rate limiting
	case errors.Is(err, apperrors.ErrRateLimited):
		return http.StatusTooManyRequests, ErrorResponse{
			Error: "Too many requests. Please try again later.",
			Code:  "RATE_LIMITED",
		}

	// Default to internal server error
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error: "An unexpected error occurred",
			Code:  "INTERNAL_ERROR",
		}
	}
}

// logError logs the error with appropriate context
func (h *ErrorHandler) logError(r *http.Request, statusCode int, err error, requestID string) {
	logAttrs := []any{
		"request_id", requestID,
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", statusCode,
		"error", err.Error(),
	}

	// Log at different levels based on status code
	switch {
	case statusCode >= 500:
		h.logger.Error("server error", logAttrs...)
	case statusCode >= 400:
		h.logger.Warn("client error", logAttrs...)
	default:
		h.logger.Info("request error", logAttrs...)
	}
}

// writeErrorResponse writes a JSON error response
func (h *ErrorHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, response ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// writeValidationErrorResponse writes a validation error response
func (h *ErrorHandler) writeValidationErrorResponse(w http.ResponseWriter, errs *apperrors.ValidationErrors) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	_ = json.NewEncoder(w).Encode(ValidationErrorResponse{
		Error:  "Validation failed",
		Code:   "VALIDATION_ERROR",
		Fields: errs.Errors,
	})
}

// HandleError Helper function to handle errors inline in handlers
// Usage: if HandleError(w, r, err, h.errorHandler) { return }
func HandleError(w http.ResponseWriter, r *http.Request, err error, handler *ErrorHandler) bool {
	if err != nil {
		handler.Handle(w, r, err)
		return true
	}
	return false
}
