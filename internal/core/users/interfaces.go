package users

import "context"

// Repository defines the data access interface for users
type Repository interface {
	Create(ctx context.Context, req CreateUserRequest) (*User, error)

	// GetByID returns ErrUserNotFound when no row matches
	GetByID(ctx context.Context, id string) (*User, error)

	// Exists is a cheap membership check used on every authenticated request
	Exists(ctx context.Context, id string) (bool, error)
}
