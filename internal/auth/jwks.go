package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"Postboard/internal/core/identity"
)

// JWKSVerifier verifies asymmetrically signed tokens against a remote key set.
// The key set is cached and refreshed in the background by jwk.Cache.
type JWKSVerifier struct {
	keys   jwk.Set
	issuer string
}

// NewJWKSVerifier registers jwksURL with a refreshing cache and performs the
// first fetch, so a misconfigured URL fails at startup. The cache stops
// refreshing when ctx is done.
func NewJWKSVerifier(ctx context.Context, jwksURL, issuer string, minRefresh time.Duration) (*JWKSVerifier, error) {
	if minRefresh <= 0 {
		minRefresh = 15 * time.Minute
	}

	cache := jwk.NewCache(ctx)
	if err := cache.Register(jwksURL, jwk.WithMinRefreshInterval(minRefresh)); err != nil {
		return nil, fmt.Errorf("failed to register JWKS URL: %w", err)
	}
	if _, err := cache.Refresh(ctx, jwksURL); err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS from %s: %w", jwksURL, err)
	}

	return &JWKSVerifier{
		keys:   jwk.NewCachedSet(cache, jwksURL),
		issuer: issuer,
	}, nil
}

// NewStaticJWKSVerifier verifies against a fixed key set
func NewStaticJWKSVerifier(keys jwk.Set, issuer string) *JWKSVerifier {
	return &JWKSVerifier{keys: keys, issuer: issuer}
}

// Verify implements identity.Verifier
func (v *JWKSVerifier) Verify(_ context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: empty token", identity.ErrInvalidToken)
	}

	opts := []jwt.ParseOption{
		jwt.WithKeySet(v.keys),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(30 * time.Second),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	tok, err := jwt.ParseString(token, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", identity.ErrInvalidToken, err)
	}

	userID := tok.Subject()
	if userID == "" {
		if legacy, ok := tok.PrivateClaims()["_id"].(string); ok {
			userID = legacy
		}
	}
	if userID == "" {
		return "", fmt.Errorf("%w: token names no user", identity.ErrInvalidToken)
	}
	return userID, nil
}
