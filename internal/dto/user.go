package dto

import (
	"time"

	"github.com/yukikurage/task-service/internal/models"
)

// SignUpRequest is the body of a registration request
type SignUpRequest struct {
	Username string `json:"username" binding:"required,notblank,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,notblank"`
}

// SignInRequest is the body of a login request
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthResponse is returned by sign-up and sign-in
type AuthResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	User      UserDTO   `json:"user"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

// NewAuthResponse creates an AuthResponse for an authenticated user
func NewAuthResponse(message, token string, user models.User) AuthResponse {
	return AuthResponse{
		Timestamp: time.Now(),
		Message:   message,
		Token:     token,
		User:      ToUserDTO(user),
	}
}
