package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the payload of the sandbox session cookie.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
}
