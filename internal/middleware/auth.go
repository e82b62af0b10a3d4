package middleware

import (
	"log/slog"

	"ledgervault/internal/errors"
	"ledgervault/internal/handlers"
	"ledgervault/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SessionAuthenticator validates a session token, including revocation.
type SessionAuthenticator interface {
	Authenticate(token string) (*models.SessionClaims, error)
}

// RequireSession reads the session cookie and rejects requests without a live
// session. On success the user id and claims are stored on the context.
func RequireSession(auth SessionAuthenticator, cookieName string, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				return handlers.SendError(c, errors.AuthMissingSession)
			}

			claims, err := auth.Authenticate(cookie.Value)
			if err != nil {
				if code, ok := handlers.CodeForError(err); ok {
					return handlers.SendError(c, code)
				}
				return handlers.SendSystemError(c, logger, err)
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				return handlers.SendError(c, errors.AuthInvalidSession, errors.WithDetails("Invalid user ID in token"))
			}

			c.Set(handlers.UserIDContextKey, userID)
			c.Set(handlers.ClaimsContextKey, claims)

			return next(c)
		}
	}
}
