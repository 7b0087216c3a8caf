package ports

import (
	"context"

	"github.com/orgodyssey/odyssey/internal/core/domain"
)

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	// Create inserts user and returns it with its assigned id.
	// Returns domain.ErrUserExists when the email is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	// MarkEmailConfirmed and GrantAdmin return domain.ErrUserNotFound when
	// no account has the email.
	MarkEmailConfirmed(ctx context.Context, email string) error
	GrantAdmin(ctx context.Context, email string) error
	// DeleteUnconfirmed removes the account with email if it was never
	// confirmed. Confirmed or missing accounts are left alone.
	DeleteUnconfirmed(ctx context.Context, email string) error
	// Count returns the total number of accounts and how many are admins.
	Count(ctx context.Context) (total int64, admins int64, err error)
}
