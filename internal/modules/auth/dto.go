package auth

import "stagegear/internal/domain"

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type CreateUserRequest struct {
	Username string          `json:"username" binding:"required"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=8"`
	Role     domain.UserRole `json:"role" binding:"required"`
}

// UpdateMeRequest is the self-service subset of UpdateUserRequest: a user can
// change their own email and password but not their role or active flag.
type UpdateMeRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// UpdateUserRequest patches a user. Nil fields are left alone.
type UpdateUserRequest struct {
	Email    *string          `json:"email"`
	Password *string          `json:"password"`
	Role     *domain.UserRole `json:"role"`
	IsActive *bool            `json:"is_active"`
}
