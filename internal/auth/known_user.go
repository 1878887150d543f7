package auth

import (
	"context"
	"fmt"

	"Postboard/internal/core/identity"
)

// UserDirectory reports whether a user id is registered
type UserDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// KnownUserVerifier rejects tokens whose user is not registered
type KnownUserVerifier struct {
	next  identity.Verifier
	users UserDirectory
}

// RequireKnownUser wraps next with a registration check against users
func RequireKnownUser(next identity.Verifier, users UserDirectory) *KnownUserVerifier {
	return &KnownUserVerifier{next: next, users: users}
}

// Verify implements identity.Verifier
func (v *KnownUserVerifier) Verify(ctx context.Context, token string) (string, error) {
	userID, err := v.next.Verify(ctx, token)
	if err != nil {
		return "", err
	}

	exists, err := v.users.Exists(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if !exists {
		return "", identity.ErrUnknownUser
	}
	return userID, nil
}
