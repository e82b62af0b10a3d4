package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"ledgervault/internal/dto"
	"ledgervault/internal/errors"

	"github.com/labstack/echo/v4"
)

// SessionCookie configures the cookie that carries the session token.
type SessionCookie struct {
	Name   string
	Secure bool
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	service LedgerService
	cookie  SessionCookie
	logger  *slog.Logger
}

func NewAuthHandler(service LedgerService, cookie SessionCookie, logger *slog.Logger) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "token"
	}
	return &AuthHandler{service: service, cookie: cookie, logger: logger}
}

// Register handles user registration
// @Summary Register a new user
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.MessageResponse
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_*"
// @Failure 409 {object} errors.ErrorResponse "AUTH_005 - Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(&req); err != nil {
		return sendValidationError(c, err)
	}

	if _, err := h.service.Register(req.Name, req.Email, req.Password); err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, dto.MessageResponse{Message: "User registered successfully"})
}

// Login authenticates the user and sets the session cookie
// @Summary Login user
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} errors.ErrorResponse "AUTH_001 - Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(&req); err != nil {
		return sendValidationError(c, err)
	}

	session, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	expires := time.Now().Add(24 * time.Hour)
	if session.Claims != nil && session.Claims.ExpiresAt != nil {
		expires = session.Claims.ExpiresAt.Time
	}
	c.SetCookie(h.newCookie(session.Token, expires))

	identity := session.User.Identity()
	return c.JSON(http.StatusOK, dto.LoginResponse{
		Message: "Login successful",
		User:    &identity,
	})
}

// Logout revokes the current session, if any, and clears the cookie.
// It always succeeds so a client can drop a session the server no longer knows.
// @Summary Logout user
// @Tags Authentication
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(h.cookie.Name); err == nil && cookie.Value != "" {
		if claims, err := h.service.Authenticate(cookie.Value); err == nil {
			if err := h.service.Logout(claims); err != nil {
				h.logger.Warn("failed to revoke session", "trace_id", getTraceID(c), "error", err)
			}
		}
	}

	c.SetCookie(h.newCookie("", time.Unix(0, 0)))

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) newCookie(value string, expires time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	return cookie
}
