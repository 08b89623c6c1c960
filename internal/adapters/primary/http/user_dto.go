package http

import (
	"time"

	"github.com/lorrc/chat-backend/internal/core/domain"
)

// UserDTO represents a user in responses. The _id key matches what the
// frontend stores for chat participants.
type UserDTO struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	ProfilePic string `json:"profilePic,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

func toUserDTO(user *domain.User) UserDTO {
	return UserDTO{
		ID:         user.ID.String(),
		Name:       user.Name,
		Email:      user.Email,
		ProfilePic: user.ProfilePic,
		CreatedAt:  user.CreatedAt.Format(time.RFC3339),
	}
}

func toUserDTOs(users []*domain.User) []UserDTO {
	response := make([]UserDTO, 0, len(users))
	for _, user := range users {
		response = append(response, toUserDTO(user))
	}
	return response
}
