package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
)

func newTestCache(t *testing.T) (*TokenCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	c, err := NewTokenCache(fmt.Sprintf("redis://%s/0", mr.Addr()))
	if err != nil {
		t.Fatalf("NewTokenCache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"telegram_id": 7,
		"exp":         exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	tok := signedToken(t, time.Now().Add(time.Hour))

	if err := c.Save(ctx, 7, tok); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := c.Load(ctx, 7)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != tok {
		t.Fatalf("loaded token mismatch")
	}
}

func TestLoadMissingReturnsEmpty(t *testing.T) {
	c, _ := newTestCache(t)
	got, err := c.Load(context.Background(), 42)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestTTLFollowsTokenExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	tok := signedToken(t, time.Now().Add(time.Hour))

	if err := c.Save(ctx, 7, tok); err != nil {
		t.Fatalf("Save: %v", err)
	}
	ttl := mr.TTL(keyToken(7))
	if ttl <= 0 || ttl > time.Hour {
		t.Fatalf("TTL outside token lifetime: %v", ttl)
	}
}

func TestExpiredTokenGetsMinimalTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	tok := signedToken(t, time.Now().Add(-time.Minute))

	if err := c.Save(ctx, 7, tok); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ttl := mr.TTL(keyToken(7)); ttl > time.Second {
		t.Fatalf("expired token cached too long: %v", ttl)
	}
}

func TestDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	tok := signedToken(t, time.Now().Add(time.Hour))
	if err := c.Save(ctx, 7, tok); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := c.Delete(ctx, 7); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := c.Load(ctx, 7)
	if err != nil || got != "" {
		t.Fatalf("token still present after delete: %q err=%v", got, err)
	}
}
