package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// GenerateSigningKey creates an ES256 (P-256) private JWK with kid, alg and use set
func GenerateSigningKey(kid string) (jwk.Key, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}

	key, err := jwk.FromRaw(privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWK from private key: %w", err)
	}

	for name, value := range map[string]interface{}{
		jwk.KeyIDKey:     kid,
		jwk.AlgorithmKey: jwa.ES256,
		jwk.KeyUsageKey:  "sig",
	} {
		if err := key.Set(name, value); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", name, err)
		}
	}
	return key, nil
}

// PublicKeySet returns the JWKS that verifies tokens signed by the given private keys
func PublicKeySet(private ...jwk.Key) (jwk.Set, error) {
	set := jwk.NewSet()
	for _, key := range private {
		pub, err := key.PublicKey()
		if err != nil {
			return nil, fmt.Errorf("failed to derive public key: %w", err)
		}
		if err := set.AddKey(pub); err != nil {
			return nil, fmt.Errorf("failed to add public key: %w", err)
		}
	}
	return set, nil
}

// IssueES256 signs a token for userID with key. A zero ttl issues a token without expiry.
func IssueES256(key jwk.Key, userID, issuer string, ttl time.Duration) (string, error) {
	now := time.Now()
	builder := jwt.NewBuilder().Subject(userID).IssuedAt(now)
	if issuer != "" {
		builder = builder.Issuer(issuer)
	}
	if ttl > 0 {
		builder = builder.Expiration(now.Add(ttl))
	}

	tok, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.ES256, key))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}
