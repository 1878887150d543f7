package identity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidToken is returned for a missing, malformed, expired or forged token
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrUnknownUser is returned when a valid token names a user that does not exist
	ErrUnknownUser = fmt.Errorf("%w: unknown user", ErrInvalidToken)
)

// IsInvalidToken checks if err is an authentication failure
func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}
