package posts

import (
	"errors"
	"fmt"
)

// Sentinel errors for post operations
var (
	// ErrUnauthenticated is returned when no actor identity accompanies the request
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden is returned when the actor does not own the post
	ErrForbidden = errors.New("not authorized to modify this post")

	// ErrNotFound is returned when a post does not exist
	ErrNotFound = errors.New("post not found")

	// ErrInvalidContent is returned for content that fails validation
	ErrInvalidContent = errors.New("invalid post content")

	// ErrInvalidDirection is returned for a vote direction other than "up" or "down"
	ErrInvalidDirection = errors.New("invalid vote direction: must be 'up' or 'down'")

	// ErrConflict is returned when concurrent writes kept colliding after all retries
	ErrConflict = errors.New("post was modified concurrently, please retry")

	// ErrVersionConflict is returned by a Repository when the expected version is stale
	ErrVersionConflict = errors.New("post version conflict")
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrInvalidContent) match validation failures
func (e *ValidationError) Unwrap() error {
	return ErrInvalidContent
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// IsNotFound checks if error means the post does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if error is a concurrent-write collision, either surfaced
// by the service or raised by a repository
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrVersionConflict)
}
