package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/orgodyssey/odyssey/internal/core/domain"
	"github.com/orgodyssey/odyssey/internal/core/ports"
)

type stubSessions struct {
	valid map[string]*ports.Session
}

func (s stubSessions) ParseSession(_ context.Context, token string) (*ports.Session, error) {
	if sess, ok := s.valid[token]; ok {
		return sess, nil
	}
	return nil, errors.New("bad token")
}

type stubUsers struct {
	byID map[int64]*domain.User
}

func (s stubUsers) CurrentUser(_ context.Context, session ports.Session) (*domain.User, error) {
	if u, ok := s.byID[session.UserID]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func newAuth() echo.MiddlewareFunc {
	return Auth(
		stubSessions{valid: map[string]*ports.Session{
			"good":   {UserID: 1, Role: domain.RoleUser},
			"orphan": {UserID: 99},
		}},
		// The stored account is admin even though the token says user.
		stubUsers{byID: map[int64]*domain.User{1: {ID: 1, Email: "a@example.com", Admin: true}}},
	)
}

func run(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := newAuth()(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, c, called
}

func TestAuthMiddleware_BearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")

	rec, c, called := run(t, req)
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected next to run with 200, got called=%v code=%d", called, rec.Code)
	}
	if c.Get(KeyRole) != domain.RoleAdmin {
		t.Fatalf("role must come from the stored account, got %v", c.Get(KeyRole))
	}
	if u, _ := c.Get(KeyUser).(*domain.User); u == nil || u.Email != "a@example.com" {
		t.Fatalf("user not set")
	}
	if s, _ := c.Get(KeySession).(*ports.Session); s == nil || s.UserID != 1 {
		t.Fatalf("session not set")
	}
}

func TestAuthMiddleware_Cookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"})

	rec, _, called := run(t, req)
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected cookie session to be accepted, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
	}{
		{name: "missing"},
		{name: "bad scheme", header: "Token good"},
		{name: "empty bearer", header: "Bearer "},
		{name: "invalid token", header: "Bearer nope"},
		{name: "invalid cookie", cookie: "nope"},
		{name: "unknown account", header: "Bearer orphan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}

			rec, _, called := run(t, req)
			if called {
				t.Fatalf("should not reach next")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}
