package ports

import (
	"context"
	"time"

	"github.com/orgodyssey/odyssey/internal/core/domain"
)

// Session is an authenticated login as carried by the signed token.
type Session struct {
	Token     string
	UserID    int64
	Email     string
	Role      string
	JTI       string
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*Session, *domain.User, error)
	Confirm(ctx context.Context, token string) (*domain.User, error)
	Logout(ctx context.Context, session Session) error
	// ParseSession verifies a signed token and rejects revoked sessions.
	ParseSession(ctx context.Context, token string) (*Session, error)
}

// AdminService manages the admin flag and the admin overview.
type AdminService interface {
	GrantAdmin(ctx context.Context, actor *domain.User, email string) error
	Overview(ctx context.Context, actor *domain.User) (*Overview, error)
	// CurrentUser loads the account behind a session.
	CurrentUser(ctx context.Context, session Session) (*domain.User, error)
}

// Overview summarizes the store for the admin panel.
type Overview struct {
	Employers int64
	Relations int64
	Users     int64
	Admins    int64
}
