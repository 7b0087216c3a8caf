package ports

import (
	"context"
	"time"
)

// TokenCipher seals an email address into an opaque, reversible token and
// opens it again. Open fails for malformed or tampered tokens.
type TokenCipher interface {
	Seal(email string, issuedAt time.Time) (string, error)
	Open(token string) (email string, issuedAt time.Time, err error)
}

// TokenLedger records redeemed confirmation tokens so each works once.
type TokenLedger interface {
	// Redeem marks token as used and reports whether this was the first use.
	Redeem(ctx context.Context, token string, ttl time.Duration) (bool, error)
	// Release forgets a redemption so the token can be used again.
	Release(ctx context.Context, token string) error
}

// SessionStore tracks revoked sessions by their JWT id.
type SessionStore interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
