package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Postboard/internal/core/identity"
)

const testSecret = "test-secret"

func TestHS256Verifier(t *testing.T) {
	ctx := context.Background()
	v, err := NewHS256Verifier(testSecret, "")
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		token, err := IssueHS256(testSecret, "user-1", "", time.Hour)
		require.NoError(t, err)

		userID, err := v.Verify(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", userID)
	})

	t.Run("token without expiry", func(t *testing.T) {
		token, err := IssueHS256(testSecret, "user-1", "", 0)
		require.NoError(t, err)

		_, err = v.Verify(ctx, token)
		assert.NoError(t, err)
	})

	t.Run("legacy _id claim", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"_id": "legacy-user",
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		userID, err := v.Verify(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "legacy-user", userID)
	})

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{"empty", func(t *testing.T) string { return "" }},
		{"garbage", func(t *testing.T) string { return "not.a.jwt" }},
		{"wrong secret", func(t *testing.T) string {
			token, err := IssueHS256("other-secret", "user-1", "", time.Hour)
			require.NoError(t, err)
			return token
		}},
		{"expired", func(t *testing.T) string {
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
				"sub": "user-1",
				"exp": time.Now().Add(-time.Hour).Unix(),
			}).SignedString([]byte(testSecret))
			require.NoError(t, err)
			return token
		}},
		{"no subject", func(t *testing.T) string {
			token, err := IssueHS256(testSecret, "", "", time.Hour)
			require.NoError(t, err)
			return token
		}},
		{"alg none", func(t *testing.T) string {
			token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1"}).
				SignedString(jwt.UnsafeAllowNoneSignatureType)
			require.NoError(t, err)
			return token
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(ctx, tt.token(t))
			assert.ErrorIs(t, err, identity.ErrInvalidToken)
		})
	}
}

func TestHS256Verifier_Issuer(t *testing.T) {
	ctx := context.Background()
	v, err := NewHS256Verifier(testSecret, "postboard")
	require.NoError(t, err)

	good, err := IssueHS256(testSecret, "user-1", "postboard", time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(ctx, good)
	assert.NoError(t, err)

	bad, err := IssueHS256(testSecret, "user-1", "elsewhere", time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(ctx, bad)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestNewHS256Verifier_RequiresSecret(t *testing.T) {
	_, err := NewHS256Verifier("", "")
	assert.Error(t, err)
}

func TestJWKSVerifier(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	key, err := GenerateSigningKey("test-key")
	require.NoError(t, err)
	set, err := PublicKeySet(key)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	defer server.Close()

	v, err := NewJWKSVerifier(ctx, server.URL, "https://id.example", time.Minute)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		token, err := IssueES256(key, "user-1", "https://id.example", time.Hour)
		require.NoError(t, err)

		userID, err := v.Verify(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", userID)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := IssueES256(key, "user-1", "https://other.example", time.Hour)
		require.NoError(t, err)

		_, err = v.Verify(ctx, token)
		assert.ErrorIs(t, err, identity.ErrInvalidToken)
	})

	t.Run("unknown key", func(t *testing.T) {
		other, err := GenerateSigningKey("other-key")
		require.NoError(t, err)
		token, err := IssueES256(other, "user-1", "https://id.example", time.Hour)
		require.NoError(t, err)

		_, err = v.Verify(ctx, token)
		assert.ErrorIs(t, err, identity.ErrInvalidToken)
	})

	t.Run("shared secret token is rejected", func(t *testing.T) {
		token, err := IssueHS256(testSecret, "user-1", "https://id.example", time.Hour)
		require.NoError(t, err)

		_, err = v.Verify(ctx, token)
		assert.ErrorIs(t, err, identity.ErrInvalidToken)
	})
}

func TestNewJWKSVerifier_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	_, err := NewJWKSVerifier(context.Background(), server.URL, "", time.Minute)
	assert.Error(t, err)
}

func TestStaticJWKSVerifier(t *testing.T) {
	key, err := GenerateSigningKey("static")
	require.NoError(t, err)
	set, err := PublicKeySet(key)
	require.NoError(t, err)

	v := NewStaticJWKSVerifier(set, "")
	token, err := IssueES256(key, "user-9", "", 0)
	require.NoError(t, err)

	userID, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-9", userID)
}

type stubDirectory struct {
	known map[string]bool
	err   error
}

func (d stubDirectory) Exists(_ context.Context, id string) (bool, error) {
	return d.known[id], d.err
}

func TestKnownUserVerifier(t *testing.T) {
	ctx := context.Background()
	inner := identity.VerifierFunc(func(_ context.Context, token string) (string, error) {
		if token == "bad" {
			return "", identity.ErrInvalidToken
		}
		return token, nil
	})

	v := RequireKnownUser(inner, stubDirectory{known: map[string]bool{"user-1": true}})

	userID, err := v.Verify(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = v.Verify(ctx, "user-2")
	assert.ErrorIs(t, err, identity.ErrUnknownUser)
	assert.True(t, identity.IsInvalidToken(err))

	_, err = v.Verify(ctx, "bad")
	assert.ErrorIs(t, err, identity.ErrInvalidToken)

	boom := errors.New("db down")
	failing := RequireKnownUser(inner, stubDirectory{err: boom})
	_, err = failing.Verify(ctx, "user-1")
	assert.ErrorIs(t, err, boom)
	assert.False(t, identity.IsInvalidToken(err))
}
