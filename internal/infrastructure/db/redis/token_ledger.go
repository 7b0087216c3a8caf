package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenLedger records redeemed confirmation tokens so each one works once.
// Key format: confirm:<sha256(token)>
type TokenLedger struct {
	client redis.Cmdable
}

func NewTokenLedger(client redis.Cmdable) *TokenLedger {
	return &TokenLedger{client: client}
}

// Redeem marks token as used for ttl and reports whether this call was the
// first redemption.
func (l *TokenLedger) Redeem(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	first, err := l.client.SetNX(ctx, ledgerKey(token), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("token ledger: %w", err)
	}
	return first, nil
}

// Release deletes the redemption record of token.
func (l *TokenLedger) Release(ctx context.Context, token string) error {
	if err := l.client.Del(ctx, ledgerKey(token)).Err(); err != nil {
		return fmt.Errorf("token ledger: %w", err)
	}
	return nil
}

func ledgerKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "confirm:" + hex.EncodeToString(sum[:])
}
