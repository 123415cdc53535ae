package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

const defaultTokenTTL = 30 * time.Minute

// TokenCache persists the bearer credential between launches so a
// restart can skip the login round-trip while the token is live. This
// is the only persistent store the client keeps.
type TokenCache struct {
	rdb *redis.Client
}

func NewTokenCache(redisURL string) (*TokenCache, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("redis url required for token cache")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &TokenCache{rdb: rdb}, nil
}

func (c *TokenCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func keyToken(telegramID int64) string {
	return fmt.Sprintf("arena:token:%d", telegramID)
}

// Save stores the token with a TTL taken from its exp claim, so the
// cache entry dies no later than the credential itself.
func (c *TokenCache) Save(ctx context.Context, telegramID int64, token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("empty token")
	}
	return c.rdb.Set(ctx, keyToken(telegramID), token, tokenTTL(token)).Err()
}

// Load returns the cached token, empty when absent or expired.
func (c *TokenCache) Load(ctx context.Context, telegramID int64) (string, error) {
	tok, err := c.rdb.Get(ctx, keyToken(telegramID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return tok, nil
}

func (c *TokenCache) Delete(ctx context.Context, telegramID int64) error {
	return c.rdb.Del(ctx, keyToken(telegramID)).Err()
}

// tokenTTL peeks at the JWT exp claim without verifying the signature
// (the backend is the verifier; we only need a lifetime hint).
func tokenTTL(token string) time.Duration {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return defaultTokenTTL
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return defaultTokenTTL
	}
	ttl := time.Until(exp.Time)
	if ttl <= 0 {
		return time.Second // let redis expire it almost immediately
	}
	return ttl
}
