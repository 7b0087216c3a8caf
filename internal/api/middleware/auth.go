package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/orgodyssey/odyssey/internal/core/domain"
	"github.com/orgodyssey/odyssey/internal/core/ports"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "session"

// Context keys set by Auth.
const (
	KeySession = "session"
	KeyUser    = "user"
	KeyRole    = "role"
)

type SessionParser interface {
	ParseSession(ctx context.Context, token string) (*ports.Session, error)
}

type UserLoader interface {
	CurrentUser(ctx context.Context, session ports.Session) (*domain.User, error)
}

// Auth validates the session token from the Authorization header or the
// session cookie, loads the account and injects both into the context. The
// role is taken from the stored account, not from the token.
func Auth(sessions SessionParser, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := extractToken(c)
			if err != nil {
				return err
			}

			ctx := c.Request().Context()
			session, err := sessions.ParseSession(ctx, raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
			}

			user, err := users.CurrentUser(ctx, *session)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
			}

			c.Set(KeySession, session)
			c.Set(KeyUser, user)
			c.Set(KeyRole, user.Role())

			return next(c)
		}
	}
}

func extractToken(c echo.Context) (string, error) {
	if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
		}
		return parts[1], nil
	}

	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", echo.NewHTTPError(http.StatusUnauthorized, "missing session")
}
