package identity

import "context"

// Verifier resolves an opaque bearer token to the user id it was issued for.
// Failures wrap ErrInvalidToken.
type Verifier interface {
	Verify(ctx context.Context, token string) (userID string, err error)
}

// VerifierFunc adapts a function to the Verifier interface
type VerifierFunc func(ctx context.Context, token string) (string, error)

// Verify calls f
func (f VerifierFunc) Verify(ctx context.Context, token string) (string, error) {
	return f(ctx, token)
}
