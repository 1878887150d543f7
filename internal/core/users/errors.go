package users

import "errors"

// Sentinel errors for common user operations
var (
	// ErrUserNotFound is returned when a user lookup finds no matching record
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyTaken is returned when the email belongs to another user
	ErrEmailAlreadyTaken = errors.New("email already taken")

	// ErrUserAlreadyExists is returned when the id is already registered
	ErrUserAlreadyExists = errors.New("user already exists")
)
