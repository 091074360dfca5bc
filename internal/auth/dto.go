package auth

import (
	"github.com/tmaseko/veldmarket-backend/internal/users"
	"github.com/tmaseko/veldmarket-backend/pkg/enums"
)

// RegisterRequest is the payload accepted by POST /auth/register.
type RegisterRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,min=7"`
}

// LoginRequest is the payload accepted by POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the expired access token plus the refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LoginResponse returns the session tokens and the authenticated user.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	Role         enums.UserRole `json:"role"`
	User         *users.UserDTO `json:"user"`
}

// RegisterResponse wraps the created account.
type RegisterResponse struct {
	User *users.UserDTO `json:"user"`
}
