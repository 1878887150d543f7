package users

import (
	"time"
)

// Name is a user's display name
type Name struct {
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
}

// User is an account known to the identity service.
// Posts refer to users by ID only; profile data never travels with a post.
type User struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	ID        string    `json:"_id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      Name      `json:"name"`
}

// CreateUserRequest is the input for registering a user row
type CreateUserRequest struct {
	ID    string `json:"_id" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Name  Name   `json:"name"`
}
