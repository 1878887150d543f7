package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"Postboard/internal/core/identity"
)

// AlgorithmHS256 is the only algorithm accepted for shared-secret tokens
const AlgorithmHS256 = "HS256"

// Claims are the claims carried by shared-secret tokens. Older tokens put the
// user id in "_id" instead of "sub".
type Claims struct {
	jwt.RegisteredClaims
	LegacyID string `json:"_id,omitempty"`
}

// UserID returns the subject, falling back to the legacy "_id" claim
func (c *Claims) UserID() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.LegacyID
}

// HS256Verifier verifies tokens signed with a shared secret
type HS256Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewHS256Verifier creates a verifier for secret. A non-empty issuer is
// required to match the token's "iss" claim.
func NewHS256Verifier(secret, issuer string) (*HS256Verifier, error) {
	if secret == "" {
		return nil, errors.New("HS256 secret is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{AlgorithmHS256}),
		jwt.WithLeeway(30 * time.Second),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	return &HS256Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(opts...),
	}, nil
}

// Verify implements identity.Verifier
func (v *HS256Verifier) Verify(_ context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: empty token", identity.ErrInvalidToken)
	}

	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", identity.ErrInvalidToken, err)
	}

	userID := claims.UserID()
	if userID == "" {
		return "", fmt.Errorf("%w: token names no user", identity.ErrInvalidToken)
	}
	return userID, nil
}

// IssueHS256 signs a token for userID. A zero ttl issues a token without expiry.
func IssueHS256(secret, userID, issuer string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			Issuer:   issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
