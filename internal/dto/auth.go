package dto

import "ledgervault/internal/models"

// Auth Request DTOs

// RegisterRequest contains user registration data
type RegisterRequest struct {
	Name     string `json:"name" validate:"trimmed_min=3"`
	Email    string `json:"email" validate:"required,strict_email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest contains login credentials
type LoginRequest struct {
	Email    string `json:"email" validate:"required,strict_email"`
	Password string `json:"password" validate:"required"`
}

// Auth Response DTOs

// LoginResponse is returned by /auth/login. User may be absent on some backends.
type LoginResponse struct {
	Message string           `json:"message,omitempty"`
	User    *models.Identity `json:"user,omitempty"`
}
