package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/orgodyssey/odyssey/internal/infrastructure/config"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	client, err := Connect(context.Background(), config.RedisConfig{Addr: srv.Addr()})
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return srv, client
}

func TestTokenLedger_RedeemOnce(t *testing.T) {
	srv, client := newTestClient(t)
	ledger := NewTokenLedger(client)
	ctx := context.Background()

	first, err := ledger.Redeem(ctx, "abc", time.Hour)
	if err != nil || !first {
		t.Fatalf("first redemption: got %v (%v)", first, err)
	}
	again, err := ledger.Redeem(ctx, "abc", time.Hour)
	if err != nil || again {
		t.Fatalf("second redemption must be rejected, got %v (%v)", again, err)
	}

	other, err := ledger.Redeem(ctx, "def", time.Hour)
	if err != nil || !other {
		t.Fatalf("other token should redeem, got %v (%v)", other, err)
	}

	if ttl := srv.TTL(ledgerKey("abc")); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}
}

func TestTokenLedger_Release(t *testing.T) {
	srv, client := newTestClient(t)
	ledger := NewTokenLedger(client)
	ctx := context.Background()

	if _, err := ledger.Redeem(ctx, "abc", time.Hour); err != nil {
		t.Fatalf("Redeem returned error: %v", err)
	}
	if err := ledger.Release(ctx, "abc"); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	if srv.Exists(ledgerKey("abc")) {
		t.Fatalf("released token still recorded")
	}

	again, err := ledger.Redeem(ctx, "abc", time.Hour)
	if err != nil || !again {
		t.Fatalf("released token should redeem again, got %v (%v)", again, err)
	}
}

func TestTokenLedger_StoreDown(t *testing.T) {
	srv, client := newTestClient(t)
	srv.Close()

	if _, err := NewTokenLedger(client).Redeem(context.Background(), "abc", time.Hour); err == nil {
		t.Fatalf("expected error when redis is unreachable")
	}
}

func TestSessionStore_RevokeUntilExpiry(t *testing.T) {
	srv, client := newTestClient(t)
	store := NewSessionStore(client)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.Revoke(ctx, "jti-1", now.Add(30*time.Minute)); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	revoked, err := store.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("expected jti-1 revoked, got %v (%v)", revoked, err)
	}
	if ttl := srv.TTL(sessionKey("jti-1")); ttl != 30*time.Minute {
		t.Fatalf("expected 30m ttl, got %v", ttl)
	}

	srv.FastForward(31 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Fatalf("entry should expire with the session, got %v (%v)", revoked, err)
	}
}

func TestSessionStore_ExpiredSessionIsNoop(t *testing.T) {
	srv, client := newTestClient(t)
	store := NewSessionStore(client)
	now := time.Now()
	store.now = func() time.Time { return now }

	if err := store.Revoke(context.Background(), "old", now.Add(-time.Minute)); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if srv.Exists(sessionKey("old")) {
		t.Fatalf("already expired session must not be stored")
	}
}

func TestConnect_Unreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	_, err := Connect(context.Background(), config.RedisConfig{Addr: addr, DialTimeout: 200 * time.Millisecond})
	if err == nil {
		t.Fatalf("expected an error for a closed server")
	}
}
