package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("an account with that email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotConfirmed  = errors.New("please activate your account before logging in")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("unauthorized access")
)

// User models an account holder. Admin and EmailConfirmed only ever flip
// from false to true.
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Admin          bool      `json:"admin"`
	EmailConfirmed bool      `json:"email_confirmed"`
	CreatedAt      time.Time `json:"created_at"`
}

// Role is the session role derived from the admin flag.
func (u *User) Role() string {
	if u.Admin {
		return RoleAdmin
	}
	return RoleUser
}

// IsAdmin is nil-safe so services can check an absent actor.
func (u *User) IsAdmin() bool {
	return u != nil && u.Admin
}
