package mockapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrTokenInvalid covers expired, revoked, and malformed tokens.
var ErrTokenInvalid = errors.New("mockapi: token invalid")

// TokenStore issues and resolves token pairs. Access tokens are signed JWTs;
// refresh tokens are opaque. Both are recorded in redis with their TTL so a
// logout revokes the pair before the JWT itself expires.
type TokenStore struct {
	client     *redis.Client
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(client *redis.Client, secret string, accessTTL, refreshTTL time.Duration) *TokenStore {
	return &TokenStore{
		client:     client,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Issue creates a token pair for the user.
func (ts *TokenStore) Issue(ctx context.Context, userID int64) (access, refresh string, err error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ts.accessTTL)),
		ID:        uuid.NewString(),
	}
	access, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.secret)
	if err != nil {
		return "", "", err
	}
	refresh = uuid.NewString()

	if err := ts.client.Set(ctx, ts.accessKey(access), userID, ts.accessTTL).Err(); err != nil {
		return "", "", fmt.Errorf("mockapi: store access token: %w", err)
	}
	if err := ts.client.Set(ctx, ts.refreshKey(refresh), access, ts.refreshTTL).Err(); err != nil {
		return "", "", fmt.Errorf("mockapi: store refresh token: %w", err)
	}
	return access, refresh, nil
}

// Resolve validates an access token and returns the user it belongs to.
// A token missing from redis is treated as revoked even when the JWT is
// still within its validity window.
func (ts *TokenStore) Resolve(ctx context.Context, access string) (int64, error) {
	token, err := jwt.ParseWithClaims(access, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return ts.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrTokenInvalid
	}

	raw, err := ts.client.Get(ctx, ts.accessKey(access)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrTokenInvalid
		}
		return 0, fmt.Errorf("mockapi: resolve token: %w", err)
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	return userID, nil
}

// Revoke invalidates the pair identified by a refresh token. Revoking an
// unknown token is not an error: logout is best-effort on the client side.
func (ts *TokenStore) Revoke(ctx context.Context, refresh string) error {
	access, err := ts.client.Get(ctx, ts.refreshKey(refresh)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("mockapi: revoke: %w", err)
	}
	if err := ts.client.Del(ctx, ts.refreshKey(refresh), ts.accessKey(access)).Err(); err != nil {
		return fmt.Errorf("mockapi: revoke: %w", err)
	}
	return nil
}

// RevokeAccess drops a single access token, used by tests to simulate
// server-side expiry.
func (ts *TokenStore) RevokeAccess(ctx context.Context, access string) error {
	return ts.client.Del(ctx, ts.accessKey(access)).Err()
}

func (ts *TokenStore) accessKey(token string) string {
	return "token:access:" + token
}

func (ts *TokenStore) refreshKey(token string) string {
	return "token:refresh:" + token
}
